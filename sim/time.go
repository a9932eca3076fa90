package sim

// Time is the constraint that simulated time values satisfy. The engine only
// orders times, subtracts them and prints them with %v, so any numeric type
// can be used. Overflow and wraparound follow the chosen type.
type Time interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// VTimeInSec defines the time in the simulated space in the unit of second
type VTimeInSec float64

// VTimeInCycle defines the time in the simulated space in the unit of cycles.
type VTimeInCycle uint64

// TimeTeller can be used to get the current time.
type TimeTeller[T Time] interface {
	CurrentTime() T
}
