package pool

import "fmt"

// Stats is a snapshot of pool state.
type Stats struct {
	Capacity         int  `json:"capacity"`
	Created          int  `json:"created"`
	Live             int  `json:"live"`
	Idle             int  `json:"idle"`
	Leased           int  `json:"leased"`
	Discarded        int  `json:"discarded"`
	PermitsAvailable int  `json:"permits_available"`
	Degraded         bool `json:"degraded"`
	Closed           bool `json:"closed"`
}

// Utilization returns the leased share of capacity in [0, 1].
func (s Stats) Utilization() float64 {
	if s.Capacity == 0 {
		return 0
	}
	return float64(s.Leased) / float64(s.Capacity)
}

func (s Stats) String() string {
	return fmt.Sprintf("capacity=%d created=%d live=%d idle=%d leased=%d discarded=%d permits=%d degraded=%t closed=%t",
		s.Capacity, s.Created, s.Live, s.Idle, s.Leased, s.Discarded, s.PermitsAvailable, s.Degraded, s.Closed)
}
