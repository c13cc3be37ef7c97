package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// promptLine writes a label and reads one trimmed line, returning fallback
// on empty input.
func promptLine(in *bufio.Scanner, out io.Writer, label, fallback string) (string, error) {
	fmt.Fprint(out, label)
	if !in.Scan() {
		if err := in.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return fallback, nil
	}
	line := strings.TrimSpace(in.Text())
	if line == "" {
		return fallback, nil
	}
	return line, nil
}

// parseIndexArg parses a 1-based position argument. Range validation is the
// aggregator's job; this only rejects non-numeric input.
func parseIndexArg(arg string) (int, error) {
	index, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("index must be a number, got %q", arg)
	}
	return index, nil
}
