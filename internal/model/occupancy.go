package model

// NextAction tells a client which form to show for a room.
type NextAction string

const (
	ActionCheckIn      NextAction = "checkin"
	ActionCheckOut     NextAction = "checkout"
	ActionInconsistent NextAction = "inconsistent"
)

// Open reports whether the guest is still present.
func (l StayLog) Open() bool {
	return l.OutTime == nil || *l.OutTime == ""
}

// Latest returns the most recently appended log, or nil for a room that has
// never been checked into.
func (r *Room) Latest() *StayLog {
	if len(r.Logs) == 0 {
		return nil
	}
	return &r.Logs[len(r.Logs)-1]
}

// LogCounts returns the number of logs with an arrival time and the number
// with a departure time.
func (r Room) LogCounts() (arrivals, departures int) {
	for _, l := range r.Logs {
		if l.InTime != "" {
			arrivals++
		}
		if !l.Open() {
			departures++
		}
	}
	return arrivals, departures
}

// Occupied classifies the room by log parity: more arrivals than departures
// means a guest is in the room.
func (r Room) Occupied() bool {
	arrivals, departures := r.LogCounts()
	return arrivals > departures
}

// NextAction mirrors the parity check used to pick between the check-in and
// check-out forms.
func (r Room) NextAction() NextAction {
	arrivals, departures := r.LogCounts()
	switch {
	case arrivals == departures:
		return ActionCheckIn
	case arrivals > departures:
		return ActionCheckOut
	default:
		return ActionInconsistent
	}
}

// AvailableRooms counts rooms whose arrivals and departures balance.
func (b Building) AvailableRooms() int {
	n := 0
	for _, r := range b.Rooms {
		arrivals, departures := r.LogCounts()
		if arrivals == departures {
			n++
		}
	}
	return n
}

// RoomByID finds a room in the building.
func (b *Building) RoomByID(id string) *Room {
	for i := range b.Rooms {
		if b.Rooms[i].ID == id {
			return &b.Rooms[i]
		}
	}
	return nil
}

// RoomByNumber finds a room in the building by its number.
func (b *Building) RoomByNumber(n int) *Room {
	for i := range b.Rooms {
		if b.Rooms[i].RoomNumber == n {
			return &b.Rooms[i]
		}
	}
	return nil
}
