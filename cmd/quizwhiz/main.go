package main

import "github.com/eslsoft/quizwhiz/cmd"

func main() {
	cmd.Execute()
}
