// Package e2e provides end-to-end retrieval tests over a corpus of note chunks.
package e2e

import (
	"context"
	"fmt"
	"path"

	"github.com/hyperjump/notesearch/internal/embedding"
	"github.com/hyperjump/notesearch/internal/models"
	"github.com/hyperjump/notesearch/internal/vector"
)

// NoteChunk is one chunk of a note in the E2E corpus.
type NoteChunk struct {
	ID        string
	Filepath  string
	Date      string
	ChunkType string
	Content   string
}

// QueryTestCase defines a query and the chunk that must be ranked within the first results.
type QueryTestCase struct {
	Query           string
	ExpectedChunkID string
	Description     string
}

// Corpus holds note chunks and query test cases for E2E tests.
type Corpus struct {
	Chunks    []NoteChunk
	TestCases []QueryTestCase
}

type noteTopic struct {
	file    string
	phrase  string
	content string
}

var topics = []noteTopic{
	{"journal/sourdough.md", "sourdough starter hydration", "Fed the sourdough starter twice today. Sourdough starter hydration at 100 percent gives the best rise."},
	{"work/kickoff.md", "project kickoff agenda", "Drafted the project kickoff agenda: goals, owners, milestones. Project kickoff agenda shared with the team."},
	{"reading/stoicism.md", "stoic philosophy dichotomy", "Notes from Epictetus. Stoic philosophy dichotomy of control separates what we can change from what we cannot."},
	{"health/marathon.md", "marathon training tempo", "Week six of marathon training. Tempo runs on Tuesday, long run on Sunday. Marathon training tempo pace felt easier."},
	{"garden/tomatoes.md", "tomato blight pruning", "Lower leaves showed tomato blight. Pruning the affected leaves and mulching to stop soil splash."},
	{"finance/budget.md", "quarterly budget review", "Quarterly budget review: groceries over by ten percent, travel under. Move savings transfer to payday."},
	{"work/postmortem.md", "database outage postmortem", "Database outage postmortem: connection pool exhausted after deploy. Action items include pool metrics and alerts."},
	{"travel/kyoto.md", "Kyoto temple itinerary", "Kyoto temple itinerary: Fushimi Inari at dawn, Kinkaku-ji after lunch, Gion walk in the evening."},
	{"recipes/ramen.md", "tonkotsu broth simmer", "Tonkotsu broth needs a twelve hour simmer. Blanch the bones first to keep the broth clean."},
	{"learning/rust.md", "rust borrow checker", "Fighting the rust borrow checker again. Lifetimes make sense once ownership clicks."},
	{"home/heating.md", "boiler pressure valve", "Boiler pressure dropped below one bar. Topped up via the filling loop and checked the pressure valve."},
	{"music/guitar.md", "fingerstyle guitar arpeggio", "Practiced fingerstyle guitar arpeggio patterns with a metronome at 70 bpm."},
	{"reading/dune.md", "spice melange ecology", "Dune rereading notes. Spice melange ecology ties the sandworms to the planet's water cycle."},
	{"work/interview.md", "candidate interview rubric", "Updated the candidate interview rubric with system design and collaboration signals."},
	{"health/sleep.md", "sleep hygiene caffeine", "Sleep hygiene experiment: no caffeine after noon, screens off at ten. Sleep score improved."},
	{"learning/kubernetes.md", "kubernetes pod eviction", "Debugged kubernetes pod eviction caused by memory pressure on the node."},
	{"family/birthday.md", "birthday party balloons", "Birthday party planning: order balloons, book the park shelter, confirm the cake."},
	{"ideas/app.md", "habit tracker streaks", "App idea: habit tracker with streaks and gentle reminders instead of guilt."},
	{"garden/compost.md", "compost nitrogen ratio", "Compost pile too wet. Adjust the compost carbon nitrogen ratio with more dry leaves."},
	{"work/okr.md", "objectives key results", "Drafted objectives and key results for next quarter: latency, reliability, onboarding."},
	{"learning/ml.md", "gradient descent learning rate", "Machine learning notes: gradient descent diverges when the learning rate is too high."},
	{"journal/moving.md", "apartment moving checklist", "Apartment moving checklist: change address, pack books first, label boxes by room."},
	{"learning/chinese.md", "机器学习", "今天学习了机器学习的基本概念，包括监督学习和无监督学习。"},
	{"recipes/curry.md", "green curry paste", "Green curry paste from scratch: chillies, lemongrass, galangal, shrimp paste."},
}

// BuildCorpus returns the note corpus, two chunks per note, and one query per note topic.
// The first chunk of each note carries its signature phrase; the second is a heading that shares
// no words with any query.
func BuildCorpus() *Corpus {
	c := &Corpus{}
	for i, t := range topics {
		date := fmt.Sprintf("2024-%02d-%02d", i%12+1, i%28+1)
		c.Chunks = append(c.Chunks,
			NoteChunk{
				ID:        fmt.Sprintf("%s#0", t.file),
				Filepath:  "/notes/" + t.file,
				Date:      date,
				ChunkType: "paragraph",
				Content:   t.content,
			},
			NoteChunk{
				ID:        fmt.Sprintf("%s#1", t.file),
				Filepath:  "/notes/" + t.file,
				Date:      date,
				ChunkType: "heading",
				Content:   fmt.Sprintf("Note %d, %s", i+1, date),
			},
		)
		c.TestCases = append(c.TestCases, QueryTestCase{
			Query:           t.phrase,
			ExpectedChunkID: fmt.Sprintf("%s#0", t.file),
			Description:     fmt.Sprintf("query %q should return %s", t.phrase, t.file),
		})
	}
	return c
}

// Records embeds the corpus chunks into index records with note metadata.
func (c *Corpus) Records(ctx context.Context, emb embedding.Embedder) ([]vector.Record, error) {
	texts := make([]string, len(c.Chunks))
	for i, ch := range c.Chunks {
		texts[i] = ch.Content
	}
	vecs, err := emb.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	out := make([]vector.Record, len(c.Chunks))
	for i, ch := range c.Chunks {
		out[i] = vector.Record{
			ID:       ch.ID,
			Document: ch.Content,
			Metadata: map[string]string{
				models.MetaFilepath:  ch.Filepath,
				models.MetaFilename:  path.Base(ch.Filepath),
				models.MetaDate:      ch.Date,
				models.MetaChunkID:   ch.ID,
				models.MetaChunkType: ch.ChunkType,
			},
			Embedding: vecs[i],
		}
	}
	return out, nil
}

// Load embeds the corpus and adds it to idx.
func (c *Corpus) Load(ctx context.Context, idx vector.Index, emb embedding.Embedder) error {
	records, err := c.Records(ctx, emb)
	if err != nil {
		return err
	}
	return idx.Add(ctx, records)
}
