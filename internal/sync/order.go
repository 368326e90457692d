package sync

// ticket identifies one issued fetch.
type ticket struct {
	seq   uint64
	epoch uint64
}

// refreshOrder decides whether a fetch result may still be applied. The
// newest issued fetch wins: a result older than one already applied is
// dropped. Background fetches are also dropped when a local mutation was
// confirmed after they were issued. Callers hold the store mutex.
type refreshOrder struct {
	issued   uint64
	applied  uint64
	inFlight int
}

func (o *refreshOrder) issue(epoch uint64) ticket {
	o.issued++
	o.inFlight++
	return ticket{seq: o.issued, epoch: epoch}
}

// settle marks t as finished and reports whether its result should be
// applied.
func (o *refreshOrder) settle(t ticket, epoch uint64, background bool) bool {
	o.inFlight--
	if t.seq < o.applied {
		return false
	}
	if background && t.epoch != epoch {
		return false
	}
	o.applied = t.seq
	return true
}
