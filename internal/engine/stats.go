package engine

// Stats counts run outcomes per action kind.
type Stats struct {
	Processed  int
	Moved      int
	Duplicates int
	Renamed    int
	Unresolved int
}

// Record counts one planned action.
func (s *Stats) Record(kind ActionKind) {
	s.Processed++
	switch kind {
	case ActionMove:
		s.Moved++
	case ActionSkipDuplicate:
		s.Duplicates++
	case ActionRenameWithSuffix:
		s.Renamed++
	case ActionUnresolved:
		s.Unresolved++
	}
}
