package main

import (
	"github.com/Bempong-Sylvester-Obese/AI-credit-score-program/pkg/cli"
)

func main() {
	cli.Execute()
}
