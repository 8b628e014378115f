// Survey entry ordering.
//
// A survey's contents are questions and headings; both carry a float sort
// key and both have to collate into one display order. Entry is the tagged
// view over the two row types, and SortEntries implements the comparison
// rule the whole application renders by:
//
//  1. entries group by section (a heading's text is its section label),
//     sections comparing lexicographically;
//  2. within a section, the two halves of a flip pair always sit together
//     with the lower-id half first, regardless of sort keys;
//  3. otherwise entries compare by sort key, where the second half of a pair
//     borrows its canonical (lower-id) partner's key so the pair behaves as
//     a single point in the ordering.
package domain

import "sort"

// Entry is a tagged variant over the two survey entry types. Exactly one of
// Question or Heading is non-nil.
type Entry struct {
	Question *Question
	Heading  *Heading
}

// QuestionEntry wraps a question as an Entry.
func QuestionEntry(q *Question) Entry { return Entry{Question: q} }

// HeadingEntry wraps a heading as an Entry.
func HeadingEntry(h *Heading) Entry { return Entry{Heading: h} }

// IsHeading reports whether the entry is a heading.
func (e Entry) IsHeading() bool { return e.Heading != nil }

// ID returns the underlying row's primary key.
func (e Entry) ID() uint {
	if e.Heading != nil {
		return e.Heading.ID
	}
	return e.Question.ID
}

// Order returns the underlying row's sort key.
func (e Entry) Order() float64 {
	if e.Heading != nil {
		return e.Heading.Order
	}
	return e.Question.Order
}

// SetOrder writes a new sort key through to the underlying row.
func (e Entry) SetOrder(v float64) {
	if e.Heading != nil {
		e.Heading.Order = v
		return
	}
	e.Question.Order = v
}

// Section returns the grouping label the entry sorts under. A heading's text
// is its own section, which lands it alongside the questions it titles.
func (e Entry) Section() string {
	if e.Heading != nil {
		return e.Heading.Text
	}
	return e.Question.Section
}

// Text returns the displayed text of the entry.
func (e Entry) Text() string {
	if e.Heading != nil {
		return e.Heading.Text
	}
	return e.Question.Text
}

// PairQuestions links a and b as each other's flip partner. Both sides are
// always set together; callers persist the two rows in one transaction.
func PairQuestions(a, b *Question) {
	aid, bid := a.ID, b.ID
	a.FlipID = &bid
	b.FlipID = &aid
}

// SortEntries sorts entries into display order in place.
//
// The sort key substitution for flip pairs needs the partner's key, so the
// canonical keys are resolved up front from the questions present. Entries
// from a single survey always include both halves of any pair.
func SortEntries(entries []Entry) {
	keys := make(map[uint]float64)
	for _, e := range entries {
		if e.Question != nil {
			keys[e.Question.ID] = e.Question.Order
		}
	}

	effective := func(e Entry) float64 {
		q := e.Question
		if q == nil {
			return e.Heading.Order
		}
		if q.FlipID != nil && *q.FlipID < q.ID {
			if k, ok := keys[*q.FlipID]; ok {
				return k
			}
		}
		return q.Order
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if sa, sb := a.Section(), b.Section(); sa != sb {
			return sa < sb
		}
		// Exactly each other's pair: lower id first, keys notwithstanding.
		if a.Question != nil && b.Question != nil &&
			a.Question.FlipID != nil && *a.Question.FlipID == b.Question.ID {
			return a.Question.ID < b.Question.ID
		}
		ka, kb := effective(a), effective(b)
		if ka != kb {
			return ka < kb
		}
		return a.ID() < b.ID()
	})
}

// SortQuestions sorts questions into display order in place, using the same
// rule as SortEntries.
func SortQuestions(qs []*Question) {
	entries := make([]Entry, len(qs))
	for i, q := range qs {
		entries[i] = QuestionEntry(q)
	}
	SortEntries(entries)
	for i, e := range entries {
		qs[i] = e.Question
	}
}
