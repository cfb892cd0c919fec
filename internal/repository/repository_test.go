package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?,?,?", placeholders(3))
}

func TestUint64Args(t *testing.T) {
	args := uint64Args([]uint64{3, 1, 2})
	assert.Equal(t, []interface{}{uint64(3), uint64(1), uint64(2)}, args)
}

func TestHoldQueryExpandsSeatSet(t *testing.T) {
	for _, base := range []string{bookedSeatsQuery, blockedSeatsQuery} {
		q := holdQuery(base, 2, false)
		assert.NotContains(t, q, "%in%", "the IN markers must be expanded")
		assert.Equal(t, 1, strings.Count(q, "(?,?)"))
		assert.False(t, strings.HasSuffix(q, "FOR UPDATE"),
			"snapshot reads must not lock")
	}
}

// The availability check that runs inside the reservation transaction
// must be a locking read on both hold tables. A plain SELECT there reads
// the transaction's consistent snapshot, which was established before
// the seat row lock was granted: a booking committed by the previous
// lock holder would be invisible and the same seat would be sold twice.
func TestHoldQueryLocksAuthoritativeReads(t *testing.T) {
	for _, base := range []string{bookedSeatsQuery, blockedSeatsQuery} {
		q := holdQuery(base, 3, true)
		assert.True(t, strings.HasSuffix(q, "FOR UPDATE"),
			"in-transaction availability reads must read latest committed rows")
		assert.Equal(t, 1, strings.Count(q, "(?,?,?)"))
	}
}
