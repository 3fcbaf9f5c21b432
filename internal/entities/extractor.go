package entities

import (
	"sort"
	"strings"

	prose "github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/topic-pulse/backend/internal/storage/models"
	"github.com/topic-pulse/backend/pkg/logger"
)

// Extractor finds named entities mentioned across a set of tweets using the
// prose NER tagger and ranks them by mention count.
type Extractor struct {
	types map[string]bool
	topN  int
}

// NewExtractor keeps only entities whose label is in types. The tagger emits
// PERSON and GPE labels.
func NewExtractor(types []string, topN int) *Extractor {
	if len(types) == 0 {
		types = []string{"PERSON", "GPE"}
	}
	if topN <= 0 {
		topN = 5
	}

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[strings.ToUpper(t)] = true
	}

	return &Extractor{types: typeSet, topN: topN}
}

// Extract returns the topN entities across texts with their mention counts,
// most mentioned first. A text that fails tagging is skipped rather than
// failing the batch.
func (e *Extractor) Extract(texts []string) []models.EntityMention {
	counts := make(map[string]int)

	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}

		doc, err := prose.NewDocument(text)
		if err != nil {
			logger.Warn("Failed to tag text for entities", zap.Error(err))
			continue
		}

		for _, ent := range doc.Entities() {
			if !e.types[ent.Label] {
				continue
			}
			name := strings.TrimSpace(ent.Text)
			if name == "" {
				continue
			}
			counts[name]++
		}
	}

	return rankMentions(counts, e.topN)
}

func rankMentions(counts map[string]int, topN int) []models.EntityMention {
	if len(counts) == 0 {
		return nil
	}

	mentions := make([]models.EntityMention, 0, len(counts))
	for entity, count := range counts {
		mentions = append(mentions, models.EntityMention{Entity: entity, Count: count})
	}

	sort.Slice(mentions, func(i, j int) bool {
		if mentions[i].Count != mentions[j].Count {
			return mentions[i].Count > mentions[j].Count
		}
		return mentions[i].Entity < mentions[j].Entity
	})

	if len(mentions) > topN {
		mentions = mentions[:topN]
	}

	return mentions
}
