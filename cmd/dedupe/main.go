package main

import (
	"github.com/doctoralliance/patient-dedupe/cmd/dedupe/command"
)

func main() {
	command.Execute()
}
