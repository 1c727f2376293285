package engine

import (
	"fmt"
	"strings"
)

// Chapter is a coarse grouping of topics.
type Chapter struct {
	Name   string   `yaml:"name" json:"name"`
	Label  string   `yaml:"label,omitempty" json:"label,omitempty"`
	Topics []string `yaml:"topics" json:"topics"`
}

// ChapterMap is the static chapter → topics configuration, in display order.
type ChapterMap []Chapter

// DefaultChapterMap returns the four report chapters.
func DefaultChapterMap() ChapterMap {
	return ChapterMap{
		{
			Name:  "democracy_section",
			Label: "All Democracy topics",
			Topics: []string{
				"elections", "parliament", "governance",
				"civilian_oversight_of_the_security_services", "civil_societies",
			},
		},
		{
			Name:  "public_administration_reform_section",
			Label: "All Public Admin Reform topics",
			Topics: []string{
				"strategic_framework_for_public_administration_reform",
				"policy_development_and_coordination",
				"public_financial_management",
				"public_service_and_human_resources_management",
				"accountability_of_administration",
				"service_delivery_to_citizens_and_businesses",
			},
		},
		{
			Name:  "23_Judiciary_and_fundamental_rights",
			Label: "All Chapter 23 – Judiciary and fundamental rights",
			Topics: []string{
				"functioning_of_the_judiciary",
				"domestic_processing_of_war_crimes",
				"fight_against_corruption",
				"fundamental_rights",
				"freedom_of_expression",
			},
		},
		{
			Name:  "24_Justice_freedom_and_security",
			Label: "All Chapter 24 – Justice, freedom and security",
			Topics: []string{
				"fight_against_organised_crime",
				"cooperation_in_the_field_of_drugs",
				"fight_against_terrorism",
				"judicial_cooperation_in_civil_commercial_and_criminal_matters",
				"legal_and_irregular_migration",
				"asylum",
				"visa_policy",
				"schengen_and_external_borders",
			},
		},
	}
}

// Names returns chapter names in display order.
func (m ChapterMap) Names() []string {
	names := make([]string, len(m))
	for i, c := range m {
		names[i] = c.Name
	}
	return names
}

// Lookup finds a chapter by name.
func (m ChapterMap) Lookup(name string) (Chapter, bool) {
	for _, c := range m {
		if c.Name == name {
			return c, true
		}
	}
	return Chapter{}, false
}

// AllTopics returns every topic, chapter by chapter.
func (m ChapterMap) AllTopics() []string {
	var topics []string
	for _, c := range m {
		topics = append(topics, c.Topics...)
	}
	return topics
}

// Validate checks that names are set and topic sets are disjoint.
func (m ChapterMap) Validate() error {
	if len(m) == 0 {
		return fmt.Errorf("chapter map is empty")
	}
	chapters := make(map[string]bool, len(m))
	owner := make(map[string]string)
	for _, c := range m {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("chapter with empty name")
		}
		if chapters[c.Name] {
			return fmt.Errorf("duplicate chapter %q", c.Name)
		}
		chapters[c.Name] = true
		for _, t := range c.Topics {
			t = strings.ToLower(strings.TrimSpace(t))
			if prev, ok := owner[t]; ok {
				return fmt.Errorf("topic %q listed in both %q and %q", t, prev, c.Name)
			}
			owner[t] = c.Name
		}
	}
	return nil
}
