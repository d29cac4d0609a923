// Package svg strips active content from uploaded svg images.
package svg

import (
	"bytes"
	"errors"
	"regexp"
)

var ErrNotSVG = errors.New("not an svg document")

var activeContent = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<\s*script[\s>].*?<\s*/\s*script\s*>`),
	regexp.MustCompile(`(?is)<\s*script[^>]*/\s*>`),
	regexp.MustCompile(`(?is)<\s*foreignObject[\s>].*?<\s*/\s*foreignObject\s*>`),
	regexp.MustCompile(`(?is)\son[a-z]+\s*=\s*("[^"]*"|'[^']*')`),
	regexp.MustCompile(`(?is)\s(xlink:)?href\s*=\s*("\s*javascript:[^"]*"|'\s*javascript:[^']*')`),
}

func Sanitize(input []byte) ([]byte, error) {
	if !bytes.Contains(bytes.ToLower(input), []byte("<svg")) {
		return nil, ErrNotSVG
	}
	clean := input
	for _, re := range activeContent {
		clean = re.ReplaceAll(clean, nil)
	}
	return clean, nil
}
