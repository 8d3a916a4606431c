// Package ics extracts lessons from the iCalendar feeds the university
// scheduling platform serves, one feed per building per day.
package ics

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Event is one VEVENT narrowed down to the fields the classifier needs.
// Room and Building are split out of the LOCATION property.
type Event struct {
	Start     time.Time
	End       time.Time
	Summary   string
	Professor string
	Room      string
	Building  string
}

// Parser turns a raw .ics payload into the day's events. Events on other
// days and events without a location are dropped.
type Parser interface {
	Parse(payload string, day time.Time) []Event
}

// NewParser builds a parser that renders event times in the given location.
// Feed timestamps are UTC.
func NewParser(loc *time.Location) Parser {
	return &feedParser{loc: loc}
}

type feedParser struct {
	loc *time.Location
}

var (
	summaryPattern     = regexp.MustCompile(`SUMMARY:(.*?)\n`)
	descriptionPattern = regexp.MustCompile(`DESCRIPTION:(.*?)\n`)
	startPattern       = regexp.MustCompile(`DTSTART:(.*?)\n`)
	endPattern         = regexp.MustCompile(`DTEND:(.*?)\n`)
	locationPattern    = regexp.MustCompile(`LOCATION:(.*?)\n`)
)

func (p *feedParser) Parse(payload string, day time.Time) []Event {
	payload = unfold(payload)
	blocks := strings.Split(payload, "BEGIN:VEVENT")
	if len(blocks) < 2 {
		return nil
	}

	today := day.In(p.loc).Format(time.DateOnly)
	events := make([]Event, 0, len(blocks)-1)

	for _, block := range blocks[1:] {
		start, err := p.parseFeedTime(match(startPattern, block))
		if err != nil {
			continue
		}
		if start.Format(time.DateOnly) != today {
			continue
		}
		end, err := p.parseFeedTime(match(endPattern, block))
		if err != nil {
			continue
		}

		location := match(locationPattern, block)
		room, building, ok := splitLocation(location)
		if !ok {
			continue
		}

		summary := match(summaryPattern, block)
		professor := CleanInstructor(match(descriptionPattern, block))
		if professor == "" && len(summary) < 20 {
			professor = summary
		}

		events = append(events, Event{
			Start:     start,
			End:       end,
			Summary:   summary,
			Professor: professor,
			Room:      room,
			Building:  building,
		})
	}
	return events
}

// unfold joins the continuation lines the iCalendar format wraps long
// properties with, and repairs the feed's recurrent mis-encoded "à".
func unfold(payload string) string {
	payload = strings.ReplaceAll(payload, "\r\n", "\n")
	payload = strings.ReplaceAll(payload, "\n ", "")
	return strings.ReplaceAll(payload, "Ã ", "à")
}

func match(pattern *regexp.Regexp, block string) string {
	groups := pattern.FindStringSubmatch(block)
	if groups == nil {
		return ""
	}
	return strings.TrimSuffix(strings.TrimSpace(groups[1]), "\r")
}

// splitLocation splits "IngA11 - poloA" into room and building. Events with
// no usable location cannot be attributed and are skipped by the caller.
func splitLocation(location string) (room, building string, ok bool) {
	parts := strings.SplitN(location, "-", 2)
	if location == "" || len(parts) < 2 {
		return "", "", false
	}
	room = strings.ReplaceAll(parts[0], " ", "")
	building = strings.TrimSpace(parts[1])
	return room, building, room != "" && building != ""
}

// parseFeedTime reads the feed's compact UTC timestamps ("20250106T090000Z").
func (p *feedParser) parseFeedTime(value string) (time.Time, error) {
	parsed, err := time.Parse("20060102T150405Z", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable feed timestamp %q: %w", value, err)
	}
	return parsed.In(p.loc), nil
}

const maxInstructorLength = 70

// CleanInstructor normalizes the DESCRIPTION property into a short
// instructor line: the NOTE tail and escape backslashes go, each
// comma-separated entry is reduced to a surname, and the result is
// upper-cased. Lines that stay too long after cleanup are dropped.
func CleanInstructor(description string) string {
	if description == "" {
		return ""
	}
	description = strings.Split(description, "\\nNOTE")[0]
	description = strings.Split(description, "\nNOTE")[0]
	description = strings.ReplaceAll(description, "\\", "")

	names := lo.Map(strings.Split(description, ","), func(name string, _ int) string {
		return surname(strings.TrimSpace(name))
	})

	cleaned := strings.Join(names, ", ")
	if len(cleaned) > maxInstructorLength {
		return ""
	}
	return strings.ToUpper(cleaned)
}

// surname reduces "M. Rossi" to "Rossi" and "Maria Rossi Bianchi" to
// "Maria Rossi", the feed's two ways of writing a lecturer.
func surname(name string) string {
	if strings.Contains(name, ".") {
		parts := strings.Split(name, ".")
		return strings.TrimSpace(parts[len(parts)-1])
	}
	words := strings.Fields(name)
	if len(words) < 2 {
		return name
	}
	return strings.Join(words[:len(words)-1], " ")
}
