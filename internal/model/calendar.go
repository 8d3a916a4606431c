package model

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/samber/lo"
)

// OpeningRule is one row of the opening-hours table. Buildings lists the
// codes the rule applies to; an empty list matches every building. Days uses
// the time.Weekday numbering (0=Sunday .. 6=Saturday). Open and Close are
// fractional hours (7.5 = 07:30). Open == Close == 0 encodes closed all day.
type OpeningRule struct {
	Buildings []string       `mapstructure:"buildings"`
	Days      []time.Weekday `mapstructure:"days"`
	Open      float64        `mapstructure:"open"`
	Close     float64        `mapstructure:"close"`
}

func (r OpeningRule) matches(code string, day time.Weekday) bool {
	if !slices.Contains(r.Days, day) {
		return false
	}
	return len(r.Buildings) == 0 || lo.Contains(r.Buildings, code)
}

// Calendar answers whether a building is outside its opening window at a
// given instant, independent of what lessons are scheduled inside it.
type Calendar interface {
	IsClosed(code string, now time.Time) bool
}

// NewCalendar builds a calendar over an ordered rule table. Rules are
// evaluated top to bottom and the first match wins, so overlapping building
// groups must be ordered by priority. A (building, weekday) pair no rule
// matches is open.
func NewCalendar(rules []OpeningRule) Calendar {
	return &ruleCalendar{rules: rules}
}

type ruleCalendar struct {
	rules []OpeningRule
}

func (c *ruleCalendar) IsClosed(code string, now time.Time) bool {
	hour := float64(now.Hour()) + float64(now.Minute())/60

	for _, rule := range c.rules {
		if !rule.matches(code, now.Weekday()) {
			continue
		}
		// Exactly at Open counts as open, exactly at Close counts as closed.
		return hour < rule.Open || hour >= rule.Close
	}
	return false
}

var weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
}

// lateGroup stays open until midnight Monday through Saturday and is the
// only group open on Sundays.
var lateGroup = []string{"poloF", "poloPN"}

// DefaultRules is the authoritative opening-hours table. Order matters: the
// Sunday rules come first so the all-day Sunday closure cannot shadow the
// late-group exemption, and the Saturday rules precede the weekday ones for
// buildings that appear in both.
var DefaultRules = []OpeningRule{
	{Buildings: lateGroup, Days: []time.Weekday{time.Sunday}, Open: 8, Close: 24},
	{Days: []time.Weekday{time.Sunday}},

	{Buildings: []string{"poloA", "poloB"}, Days: []time.Weekday{time.Saturday}, Open: 7.5, Close: 14},
	{Buildings: []string{"poloC", "poloEconomia"}, Days: []time.Weekday{time.Saturday}, Open: 8, Close: 13},
	{Buildings: []string{"poloBenedettine"}, Days: []time.Weekday{time.Saturday}, Open: 8.5, Close: 14},
	{Buildings: lateGroup, Days: []time.Weekday{time.Saturday}, Open: 8, Close: 24},

	{Buildings: []string{"poloA", "poloB"}, Days: weekdays, Open: 7.5, Close: 20},
	{Buildings: []string{"poloC"}, Days: weekdays, Open: 7.5, Close: 19.5},
	{Buildings: lateGroup, Days: weekdays, Open: 8, Close: 24},
	{Buildings: []string{"poloFibonacci"}, Days: weekdays, Open: 8, Close: 19},
	{Buildings: []string{"poloBenedettine", "poloEconomia"}, Days: weekdays, Open: 8, Close: 19.5},
	{Buildings: []string{"poloPiagge"}, Days: weekdays, Open: 8, Close: 24},
	{
		Buildings: []string{
			"poloCarmignani", "poloGuidotti", "poloNobili", "poloP.Ricci",
			"poloP.Boileau", "poloS.Rossore", "poloSapienza", "poloFarmacia",
		},
		Days: weekdays, Open: 8, Close: 19.5,
	},
}

// RulesFromJson loads an opening-hours table from a JSON file, so the table
// can be swapped without a rebuild when buildings or windows change.
func RulesFromJson(file string) ([]OpeningRule, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	var rulesJson []map[string]any
	if err := json.Unmarshal(bytes, &rulesJson); err != nil {
		return nil, err
	}

	rules := make([]OpeningRule, 0, len(rulesJson))
	for i, ruleJson := range rulesJson {
		var rule OpeningRule
		if err := decodeWeakly(ruleJson, &rule); err != nil {
			return nil, fmt.Errorf("cannot decode rule %v: %w", i, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
