package sequences

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

/*
	Minimal FASTA handling for the reference genome ("Sequence
	Store"). Only the first record of the file is used; its sequence
	is uppercased so variant projection and alignment always compare
	like against like.
*/

// LoadReference reads the first FASTA record from path and returns
// its uppercased sequence and identifier (the first whitespace
// delimited token of the header).
func LoadReference(path string) (string, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	var (
		id       string
		seq      strings.Builder
		inRecord bool
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			if inRecord {
				// a second record starts; the reference is single-sequence
				break
			}
			if fields := strings.Fields(line[1:]); len(fields) > 0 {
				id = fields[0]
			}
			inRecord = true
			continue
		}
		if !inRecord {
			return "", "", fmt.Errorf("malformed FASTA: sequence data before any header in %s", path)
		}
		seq.WriteString(strings.ToUpper(line))
	}
	if err := scanner.Err(); err != nil {
		return "", "", err
	}
	if !inRecord {
		return "", "", fmt.Errorf("no FASTA record found in %s", path)
	}

	return seq.String(), id, nil
}
