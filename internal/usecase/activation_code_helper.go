package usecase

import (
	"bufio"
	"crypto/rand"
	"io"
	"strings"
)

// GenerateAccessCode creates a secure, random, and human-readable access code.
// Format: PREFIX-XXXX-XXXX (or XXXX-XXXX without a prefix).
func GenerateAccessCode(prefix string) (string, error) {
	// A character set that avoids ambiguous characters like O/0, I/1, l.
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	const codeLength = 8

	buffer := make([]byte, codeLength)
	if _, err := io.ReadFull(rand.Reader, buffer); err != nil {
		return "", err
	}

	for i := 0; i < codeLength; i++ {
		buffer[i] = chars[int(buffer[i])%len(chars)]
	}

	code := string(buffer[0:4]) + "-" + string(buffer[4:8])
	if p := strings.ToUpper(strings.TrimSpace(prefix)); p != "" {
		code = p + "-" + code
	}
	return code, nil
}

// GenerateAccessCodes returns n distinct codes.
func GenerateAccessCodes(prefix string, n int) ([]string, error) {
	seen := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	for len(out) < n {
		c, err := GenerateAccessCode(prefix)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

// ParseCodeList reads one code per line. Blank lines and '#' comments are skipped;
// normalization is left to the validator and the repository.
func ParseCodeList(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}
