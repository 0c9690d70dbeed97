package oracle

import (
	"regexp"
	"strconv"
	"strings"
)

// bors writes "Auto merge of #1234 - ..." subject lines for ordinary
// merges. A rollup of several otherwise-independent changes names more
// than one PR number ("Auto merge of #1234 #1235 #1236 - ...") and its
// body lists one "Successful merges:" bullet per sub-PR (spec.md
// GLOSSARY "Rollup").
var rollupSubjectRe = regexp.MustCompile(`^Auto merge of #\d+(?: #\d+)+ - `)

func isRollupSubject(subject string) bool {
	return rollupSubjectRe.MatchString(subject)
}

var successfulMergeRe = regexp.MustCompile(`(?m)^\s*-\s*#(\d+)\b`)

// SubPRs extracts the pull request numbers a rollup commit's body lists
// under "Successful merges:". The list ends at the first non-blank line
// that is not a "- #N" bullet (e.g. a "Failed merges:" heading).
func SubPRs(body string) []int {
	const marker = "Successful merges:"
	idx := strings.Index(body, marker)
	if idx < 0 {
		return nil
	}
	var prs []int
	for _, line := range strings.Split(body[idx+len(marker):], "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		m := successfulMergeRe.FindStringSubmatch(line)
		if m == nil {
			break
		}
		if n, err := strconv.Atoi(m[1]); err == nil {
			prs = append(prs, n)
		}
	}
	return prs
}
