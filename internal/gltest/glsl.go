package gltest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	lineComment  = regexp.MustCompile(`//[^\n]*`)
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	defineRe     = regexp.MustCompile(`(?m)^\s*#define\s+(\w+)\s+(\S+)`)
	structRe     = regexp.MustCompile(`(?s)struct\s+(\w+)\s*\{(.*?)\}\s*;`)
	fieldRe      = regexp.MustCompile(`(\w+)\s+(\w+)\s*(?:\[\s*(\w+)\s*\])?\s*;`)
	uniformRe    = regexp.MustCompile(`\buniform\s+(?:(?:lowp|mediump|highp)\s+)?(\w+)\s+(\w+)\s*(?:\[\s*(\w+)\s*\])?\s*;`)
	inputRe      = regexp.MustCompile(`(?m)^\s*(?:layout\s*\(\s*location\s*=\s*(\d+)\s*\)\s*)?in\s+(\w+)\s+(\w+)\s*;`)
	mainRe       = regexp.MustCompile(`\bvoid\s+main\s*\(`)
)

func stripComments(src string) string {
	return lineComment.ReplaceAllString(blockComment.ReplaceAllString(src, ""), "")
}

// checkSource returns an empty string for acceptable source, otherwise a
// driver-style error log.
func checkSource(src string) string {
	lines := strings.Split(src, "\n")
	first := ""
	for _, l := range lines {
		if t := strings.TrimSpace(l); t != "" {
			first = t
			break
		}
	}
	if !strings.HasPrefix(first, "#version") {
		return "ERROR: 0:1: '' : #version required and missing."
	}

	body := stripComments(src)
	if !mainRe.MatchString(body) {
		return "ERROR: 0:0: 'main' : function not defined"
	}
	pairs := map[rune]rune{'}': '{', ')': '(', ']': '['}
	var stack []rune
	line := 1
	for _, r := range body {
		switch r {
		case '\n':
			line++
		case '{', '(', '[':
			stack = append(stack, r)
		case '}', ')', ']':
			if len(stack) == 0 || stack[len(stack)-1] != pairs[r] {
				return fmt.Sprintf("ERROR: 0:%d: '%c' : syntax error: unexpected token", line, r)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		return fmt.Sprintf("ERROR: 0:%d: '' : syntax error: unexpected end of file", line)
	}
	return ""
}

func defines(src string) map[string]string {
	out := make(map[string]string)
	for _, m := range defineRe.FindAllStringSubmatch(src, -1) {
		out[m[1]] = m[2]
	}
	return out
}

func arraySize(tok string, defs map[string]string) int {
	if tok == "" {
		return 0
	}
	if v, ok := defs[tok]; ok {
		tok = v
	}
	n, err := strconv.Atoi(tok)
	if err != nil || n < 1 {
		return 0
	}
	return n
}

type field struct {
	typ, name string
	size      int
}

// uniformNames lists every active uniform name a source declares.
func uniformNames(src string) []string {
	src = stripComments(src)
	defs := defines(src)

	structs := make(map[string][]field)
	for _, m := range structRe.FindAllStringSubmatch(src, -1) {
		var fields []field
		for _, f := range fieldRe.FindAllStringSubmatch(m[2], -1) {
			fields = append(fields, field{typ: f[1], name: f[2], size: arraySize(f[3], defs)})
		}
		structs[m[1]] = fields
	}

	var out []string
	var expand func(prefix string, f field)
	expand = func(prefix string, f field) {
		names := []string{prefix + f.name}
		if f.size > 0 {
			names = names[:0]
			for i := 0; i < f.size; i++ {
				names = append(names, fmt.Sprintf("%s%s[%d]", prefix, f.name, i))
			}
		}
		members, isStruct := structs[f.typ]
		for _, n := range names {
			if !isStruct {
				out = append(out, n)
				continue
			}
			for _, m := range members {
				expand(n+".", m)
			}
		}
	}
	for _, m := range uniformRe.FindAllStringSubmatch(src, -1) {
		expand("", field{typ: m[1], name: m[2], size: arraySize(m[3], defs)})
	}
	return out
}

// vertexInputs maps vertex stage inputs to their locations.
func vertexInputs(src string) map[string]int32 {
	out := make(map[string]int32)
	next := int32(0)
	for _, m := range inputRe.FindAllStringSubmatch(stripComments(src), -1) {
		loc := next
		if m[1] != "" {
			n, _ := strconv.Atoi(m[1])
			loc = int32(n)
		}
		out[m[3]] = loc
		next = loc + 1
	}
	return out
}
