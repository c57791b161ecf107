package arena

// Outcome is the result of one collision evaluation.
type Outcome struct {
	// Coins is the live coin set after collected coins were removed.
	Coins []Item
	// Score is the score after coin and banana effects.
	Score int
	// Collected counts coins removed in this evaluation.
	Collected int
	// BananaHit is true when any banana touched the avatar.
	BananaHit bool
}

// Resolve applies one evaluation of the collision rules. Every touching coin
// is removed and adds one point; afterwards any touching banana forces the
// score to zero. Bananas are never removed. The input slices are not
// modified.
func Resolve(avatar Avatar, coins, bananas []Item, score int) Outcome {
	out := Outcome{Coins: make([]Item, 0, len(coins)), Score: score}
	for _, c := range coins {
		if Touches(avatar, c) {
			out.Collected++
			continue
		}
		out.Coins = append(out.Coins, c)
	}
	out.Score += out.Collected

	for _, b := range bananas {
		if Touches(avatar, b) {
			out.BananaHit = true
			break
		}
	}
	if out.BananaHit {
		out.Score = 0
	}
	return out
}
