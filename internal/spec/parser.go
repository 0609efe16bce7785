package spec

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/felixgeelhaar/blueprint/internal/domain"
	"github.com/felixgeelhaar/blueprint/internal/errors"
)

type section int

const (
	sectionNone section = iota
	sectionTitle
	sectionDescription
	sectionRequirements
	sectionAcceptance
	sectionConstraints
	sectionPriority
)

var (
	labelPattern   = regexp.MustCompile(`(?i)^(title|name|description|summary|overview|requirements?|features?|acceptance(?:\s+criteria)?|constraints?|priority)\s*:\s*(.*)$`)
	headingPattern = regexp.MustCompile(`^#{1,6}\s+(.*)$`)
	bulletPattern  = regexp.MustCompile(`^(?:[-*+•]|\d+[.)])\s+(.*)$`)
	mandatePattern = regexp.MustCompile(`(?i)\b(must|should|shall)\b`)
	sentenceSplit  = regexp.MustCompile(`[.!?\n]+`)
)

// ParseText extracts a Specification from loosely structured text.
//
// Recognized labels ("requirements:", "acceptance criteria:", ...) and
// markdown headings open sections; bullet lines belong to the current
// section. Parsing never fails: when sections are missing it falls back to
// unlabeled bullets, then to sentences containing must/should/shall, and the
// title defaults to "Untitled Feature". The returned Specification is never
// nil; a non-nil error is a ParseError describing the fallbacks applied.
func ParseText(text string) (*Specification, error) {
	s := &Specification{}
	var (
		current     = sectionNone
		description []string
		loose       []string
		notes       []string
	)

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if m := headingPattern.FindStringSubmatch(line); m != nil {
			heading := strings.TrimSpace(m[1])
			if sec, value, ok := matchLabel(strings.TrimSuffix(heading, ":") + ":"); ok && value == "" {
				current = sec
				continue
			}
			if sec, value, ok := matchLabel(heading); ok {
				current = s.assign(sec, value, &description)
				continue
			}
			if s.Title == "" {
				s.Title = heading
				current = sectionDescription
			} else {
				current = sectionNone
			}
			continue
		}

		if sec, value, ok := matchLabel(line); ok {
			current = s.assign(sec, value, &description)
			continue
		}

		item := line
		isBullet := false
		if m := bulletPattern.FindStringSubmatch(line); m != nil {
			item = strings.TrimSpace(m[1])
			isBullet = true
		}

		switch current {
		case sectionTitle:
			s.Title = item
			current = sectionDescription
		case sectionRequirements:
			s.Requirements = append(s.Requirements, item)
		case sectionAcceptance:
			s.AcceptanceCriteria = append(s.AcceptanceCriteria, item)
		case sectionConstraints:
			s.Constraints = append(s.Constraints, item)
		case sectionPriority:
			s.setPriority(item, &notes)
			current = sectionNone
		default:
			if isBullet {
				loose = append(loose, item)
			} else {
				description = append(description, item)
			}
		}
	}

	if s.Description == "" {
		s.Description = strings.Join(description, " ")
	}
	if p := string(s.Priority); p != "" && s.Priority.Validate() != nil {
		s.Priority = ""
		s.setPriority(p, &notes)
	}

	if len(s.Requirements) == 0 {
		switch {
		case len(loose) > 0:
			s.Requirements = loose
			notes = append(notes, "no requirements section, used unlabeled bullets")
		default:
			if reqs := mandateSentences(text); len(reqs) > 0 {
				s.Requirements = reqs
				notes = append(notes, "no requirements section, used must/should/shall sentences")
			} else {
				notes = append(notes, "no requirements found")
			}
		}
	}

	if strings.TrimSpace(s.Title) == "" {
		s.Title = DefaultTitle
		notes = append(notes, "no title found")
	}

	if len(notes) > 0 {
		return s, errors.NewParseError(strings.Join(notes, "; "))
	}
	return s, nil
}

func matchLabel(line string) (section, string, bool) {
	m := labelPattern.FindStringSubmatch(line)
	if m == nil {
		return sectionNone, "", false
	}
	label := strings.ToLower(strings.Join(strings.Fields(m[1]), " "))
	value := strings.TrimSpace(m[2])

	switch {
	case label == "title" || label == "name":
		return sectionTitle, value, true
	case label == "description" || label == "summary" || label == "overview":
		return sectionDescription, value, true
	case strings.HasPrefix(label, "requirement") || strings.HasPrefix(label, "feature"):
		return sectionRequirements, value, true
	case strings.HasPrefix(label, "acceptance"):
		return sectionAcceptance, value, true
	case strings.HasPrefix(label, "constraint"):
		return sectionConstraints, value, true
	default:
		return sectionPriority, value, true
	}
}

// assign stores an inline label value and returns the section that
// following lines belong to.
func (s *Specification) assign(sec section, value string, description *[]string) section {
	if value == "" {
		return sec
	}
	switch sec {
	case sectionTitle:
		s.Title = value
		return sectionDescription
	case sectionDescription:
		*description = append(*description, value)
		return sectionDescription
	case sectionRequirements:
		s.Requirements = append(s.Requirements, value)
	case sectionAcceptance:
		s.AcceptanceCriteria = append(s.AcceptanceCriteria, value)
	case sectionConstraints:
		s.Constraints = append(s.Constraints, value)
	case sectionPriority:
		s.Priority = domain.Priority(value)
		return sectionNone
	}
	return sec
}

func (s *Specification) setPriority(value string, notes *[]string) {
	if p, ok := domain.ParsePriority(value); ok {
		s.Priority = p
		return
	}
	*notes = append(*notes, fmt.Sprintf("unrecognized priority %q", value))
}

func mandateSentences(text string) []string {
	var out []string
	for _, sentence := range sentenceSplit.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence != "" && mandatePattern.MatchString(sentence) {
			out = append(out, sentence)
		}
	}
	return out
}
