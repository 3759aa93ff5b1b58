package recall

import (
	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/index"
)

func scifiBooks() []core.Book {
	return []core.Book{
		{ID: "b1", Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction", Description: "desert planet spice empire"},
		{ID: "b2", Title: "Foundation", Author: "Isaac Asimov", Genre: "Science Fiction", Description: "galactic empire psychohistory"},
		{ID: "b3", Title: "Hyperion", Author: "Dan Simmons", Genre: "Science Fiction", Description: "pilgrims time tombs"},
		{ID: "b4", Title: "The Hobbit", Author: "J. R. R. Tolkien", Genre: "Fantasy", Description: "dragon treasure journey"},
		{ID: "b5", Title: "Neuromancer", Author: "William Gibson", Genre: "Science Fiction", Description: "cyberspace hacker"},
	}
}

func scenarioRatings() []core.RatingEntry {
	return []core.RatingEntry{
		{UserID: "u1", BookID: "b1", Value: 5},
		{UserID: "u1", BookID: "b2", Value: 5},
		{UserID: "u1", BookID: "b3", Value: 4},
		{UserID: "u2", BookID: "b1", Value: 4},
		{UserID: "u2", BookID: "b2", Value: 5},
		{UserID: "u2", BookID: "b4", Value: 5},
		{UserID: "u3", BookID: "b3", Value: 4},
		{UserID: "u3", BookID: "b5", Value: 5},
	}
}

func scenarioSnapshot() *index.Snapshot {
	return index.Build(scifiBooks(), scenarioRatings(), index.Options{}, 1)
}

func ids(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
