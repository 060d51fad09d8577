/*
effective.go - Effective-dated value series

PURPOSE:
  An EffectiveSeries answers "what value was in force at date D?". Each
  record holds from its effective date until superseded by a record with a
  later effective date. Salary rates are the main user, but the series knows
  nothing about money.

LOOKUP RULE:
  ValueAt(D) is the value of the LAST record whose At <= D.
  - Records are ordered by At ascending regardless of insertion order.
  - Records sharing the same At keep their insertion order (stable sort),
    so the one inserted later wins.
  - No record at or before D means "none" (ok == false). Callers must not
    read that as a zero value.

EXAMPLE:
  series := NewEffectiveSeries([]Effective[int]{
      {At: NewTimePoint(2024, 1, 1), Value: 1500},
      {At: NewTimePoint(2024, 4, 1), Value: 1800},
  })
  series.ValueAt(NewTimePoint(2024, 3, 1)) // 1500, true
  series.ValueAt(NewTimePoint(2023, 12, 1)) // 0, false

SEE ALSO:
  - payroll/series.go: salary rates on top of this series
*/
package generic

import "sort"

// Effective is one record of an EffectiveSeries.
type Effective[V any] struct {
	At    TimePoint
	Value V
}

// EffectiveSeries is immutable once built. Safe for concurrent reads.
type EffectiveSeries[V any] struct {
	records []Effective[V]
}

// NewEffectiveSeries copies and orders records. Empty input is allowed.
func NewEffectiveSeries[V any](records []Effective[V]) *EffectiveSeries[V] {
	sorted := make([]Effective[V], len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].At.Before(sorted[j].At)
	})
	return &EffectiveSeries[V]{records: sorted}
}

// ValueAt returns the value in force at at.
func (s *EffectiveSeries[V]) ValueAt(at TimePoint) (V, bool) {
	// First record strictly after at; the one before it is the last match.
	i := sort.Search(len(s.records), func(i int) bool {
		return s.records[i].At.After(at)
	})
	if i == 0 {
		var zero V
		return zero, false
	}
	return s.records[i-1].Value, true
}

// Latest returns the value of the most recent record, if any.
func (s *EffectiveSeries[V]) Latest() (V, bool) {
	if len(s.records) == 0 {
		var zero V
		return zero, false
	}
	return s.records[len(s.records)-1].Value, true
}

// Len returns the number of records.
func (s *EffectiveSeries[V]) Len() int { return len(s.records) }

