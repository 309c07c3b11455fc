package menu

// ScrollTick moves the selected slot by one detent, wrapping both ways.
func ScrollTick(selected, dir, count int) int {
	return (selected + count + dir) % count
}

// EditSelectTick moves the main digit cursor. Moving right lowers the edited
// place value by one decade; cursor 0 is save.
func EditSelectTick(cursor, dir int) (int, int32) {
	cursor = (cursor + EditPositions + dir) % EditPositions
	return cursor, Pow10(EditPositions - 1 - cursor)
}

// CalNavigateTick moves the calibration digit cursor.
func CalNavigateTick(cursor, dir int) (int, int32) {
	cursor = (cursor + CalPositions + dir) % CalPositions
	return cursor, Pow10(CalPositions - 1 - cursor)
}

// StepValue adds delta steps to value without clamping.
func StepValue(value, step int32, delta int) int32 {
	return value + step*int32(delta)
}

// Wrap reduces v into [0, n).
func Wrap(v, n int) int {
	if n <= 0 {
		return 0
	}
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

// Pow10 returns 10^n for small non-negative n.
func Pow10(n int) int32 {
	p := int32(1)
	for i := 0; i < n; i++ {
		p *= 10
	}
	return p
}

// Clamp saturates v into [lo, hi].
func Clamp(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
