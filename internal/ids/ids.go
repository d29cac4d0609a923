package ids

import "github.com/segmentio/ksuid"

// New returns a unique KSUID. Ids sort by creation second; ids minted within
// the same second have no guaranteed order.
func New() string {
	return ksuid.New().String()
}
