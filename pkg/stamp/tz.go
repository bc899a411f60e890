package stamp

import (
	"github.com/ringsaturn/tzf"
)

// TZResolver maps a coordinate to an IANA timezone name. An empty string
// means no timezone covers the coordinate (open ocean, poles).
type TZResolver interface {
	Resolve(lat, lon float64) string
}

type tzfResolver struct {
	finder tzf.F
}

// NewTZResolver returns a resolver backed by tzf's embedded timezone
// boundary data. The finder is expensive to build, so construct one per
// process and share it.
func NewTZResolver() (TZResolver, error) {
	finder, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, err
	}
	return &tzfResolver{finder: finder}, nil
}

func (r *tzfResolver) Resolve(lat, lon float64) string {
	// tzf takes longitude first
	return r.finder.GetTimezoneName(lon, lat)
}
