package fasta

// Stats accumulates summary counts over a stream of records.
type Stats struct {
	Records  int
	Residues int // total sequence characters
	Empty    int // records with an empty sequence
	MinLen   int
	MaxLen   int
}

// Add counts rec.
func (s *Stats) Add(rec Record) {
	n := rec.Len()
	if s.Records == 0 || n < s.MinLen {
		s.MinLen = n
	}
	if n > s.MaxLen {
		s.MaxLen = n
	}
	if n == 0 {
		s.Empty++
	}
	s.Records++
	s.Residues += n
}

// MeanLen returns the average sequence length, or 0 with no records.
func (s *Stats) MeanLen() float64 {
	if s.Records == 0 {
		return 0
	}
	return float64(s.Residues) / float64(s.Records)
}
