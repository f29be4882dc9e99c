package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// confirm asks question on out and reads one answer line from in. Only
// "yes" or "y" (any case, surrounding spaces ignored) accept.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s (yes/no): ", question)

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		fmt.Fprintln(out)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "yes", "y":
		return true
	default:
		return false
	}
}
