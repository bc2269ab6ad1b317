/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"io"
	"sync"
)

// cliProgress renders the sync coordinator's settle progress as a
// monotonically increasing percentage. Purely cosmetic.
type cliProgress struct {
	mu          sync.Mutex
	out         io.Writer
	total       int
	count       int
	lastPrinted int
}

func newCLIProgress(out io.Writer) *cliProgress {
	return &cliProgress{out: out}
}

func (p *cliProgress) Start(totalWrites int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if totalWrites < 1 {
		totalWrites = 1
	}
	p.total = totalWrites
	fmt.Fprintf(p.out, "Saving quiz results (%d writes)\n", totalWrites)
}

func (p *cliProgress) Increment(delta int) {
	if delta <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count += delta
	pct := p.count * 100 / p.total
	if pct > 100 {
		pct = 100
	}
	if pct > p.lastPrinted {
		fmt.Fprintf(p.out, "Saving quiz results: %d%%\n", pct)
		p.lastPrinted = pct
	}
}

func (p *cliProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastPrinted < 100 {
		fmt.Fprintln(p.out, "Saving quiz results: 100%")
		p.lastPrinted = 100
	}
}
