package billing

// SplitEven divides total into parts nearly-equal amounts that sum exactly
// to total. Every slot starts at the floor division; the remainder is added
// one cent at a time to the trailing slots, last slot first, so the sum
// reconciles to the cent.
func SplitEven(total Cents, parts int) []Cents {
	base := total / Cents(parts)
	out := make([]Cents, parts)
	for i := range out {
		out[i] = base
	}
	rest := total - base*Cents(parts)
	for i := Cents(0); i < rest; i++ {
		out[parts-1-int(i)]++
	}
	return out
}
