// Package faq holds pre-written answers for common HR questions. A match
// here is the cheapest possible resolution: no cache read, no cache write,
// no model call, no audit entry.
package faq

import (
	"fmt"
	"regexp"

	"github.com/opshr/hrdesk/pkg/normalize"
)

// Entry pairs a set of patterns with a static answer. Patterns are matched
// against the normalized query, so they should not rely on punctuation or
// casing.
type Entry struct {
	Patterns []string `yaml:"patterns"`
	Answer   string   `yaml:"answer"`
}

type compiledEntry struct {
	patterns []*regexp.Regexp
	answer   string
}

// Matcher is an ordered pattern→answer table. First match wins.
type Matcher struct {
	entries []compiledEntry
}

// New compiles the given entries, defaults first when extra entries are
// appended from config. Returns an error on any invalid pattern so a bad
// config fails at startup rather than at match time.
func New(entries []Entry) (*Matcher, error) {
	m := &Matcher{}
	for i, e := range entries {
		ce := compiledEntry{answer: e.Answer}
		for _, p := range e.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("faq entry %d: compile %q: %w", i, p, err)
			}
			ce.patterns = append(ce.patterns, re)
		}
		m.entries = append(m.entries, ce)
	}
	return m, nil
}

// Match returns the static answer for the first entry whose pattern matches
// the normalized query, or "" if none match. It has no side effects.
func (m *Matcher) Match(query string) string {
	norm := normalize.Normalize(query)
	for _, e := range m.entries {
		for _, re := range e.patterns {
			if re.MatchString(norm) {
				return e.answer
			}
		}
	}
	return ""
}

// Defaults returns the built-in FAQ table.
func Defaults() []Entry {
	return []Entry{
		{
			Patterns: []string{`\bleave policy\b`, `\bhow many leaves\b`, `\bleave entitlement\b`},
			Answer: "**Leave Policy:**\n" +
				"- **Casual Leave:** 12 days/year\n" +
				"- **Sick Leave:** 10 days/year\n" +
				"- **Earned Leave:** 15 days/year\n\n" +
				"Unused earned leave can be carried forward (max 30 days). " +
				"Casual leaves cannot be carried forward.",
		},
		{
			Patterns: []string{`\bcompany holidays\b`, `\bpublic holidays\b`, `\bholiday list\b`},
			Answer: "**Company Holidays 2026:**\n" +
				"- Jan 26 — Republic Day\n" +
				"- Mar 14 — Holi\n" +
				"- Apr 14 — Ambedkar Jayanti\n" +
				"- May 1 — May Day\n" +
				"- Aug 15 — Independence Day\n" +
				"- Oct 2 — Gandhi Jayanti\n" +
				"- Oct 20 — Dussehra\n" +
				"- Nov 9 — Diwali\n" +
				"- Dec 25 — Christmas",
		},
		{
			Patterns: []string{`\bworking hours\b`, `\boffice timings?\b`, `\bwork schedule\b`},
			Answer: "**Working Hours:** 9:00 AM to 6:00 PM (Mon-Fri)\n" +
				"**Lunch Break:** 1:00 PM to 2:00 PM\n" +
				"Flexible timing available with manager approval.",
		},
		{
			Patterns: []string{`\bhelp\b`, `\bwhat can you do\b`, `\bcapabilities\b`},
			Answer: "I'm your **HR Desk assistant**. I can help you with:\n" +
				"- Employee lookup (by code or name)\n" +
				"- Leave management (apply, status, approve/reject)\n" +
				"- Attendance records\n" +
				"- Payroll & salary slips\n" +
				"- Company statistics\n" +
				"- Add/update employees (HR admin only)\n" +
				"- Resignation management (HR admin only)\n" +
				"- Role management (super admin only)\n\n" +
				"Just ask in plain English!",
		},
	}
}
