package patterns

func doji(b *bars, i int) float64 {
	if b.isDoji(i) {
		return bullish
	}
	return 0
}

func dragonflyDoji(b *bars, i int) float64 {
	c := b.at(i)
	if b.isDoji(i) && b.isVeryShortShadow(c.UpperShadow(), i) && !b.isVeryShortShadow(c.LowerShadow(), i) {
		return bullish
	}
	return 0
}

func gravestoneDoji(b *bars, i int) float64 {
	c := b.at(i)
	if b.isDoji(i) && b.isVeryShortShadow(c.LowerShadow(), i) && !b.isVeryShortShadow(c.UpperShadow(), i) {
		return bullish
	}
	return 0
}

// hammerShape: small real body at the top of the range with a long lower shadow.
func hammerShape(b *bars, i int) bool {
	c := b.at(i)
	body := c.Body()
	return body > 0 && b.isShortBody(i) &&
		c.LowerShadow() >= longShadowFactor*body &&
		b.isVeryShortShadow(c.UpperShadow(), i)
}

// invertedShape: small real body at the bottom of the range with a long upper shadow.
func invertedShape(b *bars, i int) bool {
	c := b.at(i)
	body := c.Body()
	return body > 0 && b.isShortBody(i) &&
		c.UpperShadow() >= longShadowFactor*body &&
		b.isVeryShortShadow(c.LowerShadow(), i)
}

func hammer(b *bars, i int) float64 {
	if hammerShape(b, i) && b.belowTrend(i) {
		return bullish
	}
	return 0
}

func hangingMan(b *bars, i int) float64 {
	if hammerShape(b, i) && b.aboveTrend(i) {
		return bearish
	}
	return 0
}

func invertedHammer(b *bars, i int) float64 {
	if invertedShape(b, i) && b.belowTrend(i) {
		return bullish
	}
	return 0
}

func shootingStar(b *bars, i int) float64 {
	if invertedShape(b, i) && b.aboveTrend(i) {
		return bearish
	}
	return 0
}

func marubozu(b *bars, i int) float64 {
	c := b.at(i)
	if !b.isLongBody(i) || !b.isVeryShortShadow(c.UpperShadow(), i) || !b.isVeryShortShadow(c.LowerShadow(), i) {
		return 0
	}
	return colorSign(b, i)
}

func spinningTop(b *bars, i int) float64 {
	c := b.at(i)
	body := c.Body()
	if b.isDoji(i) || !b.isShortBody(i) || c.UpperShadow() <= body || c.LowerShadow() <= body {
		return 0
	}
	return colorSign(b, i)
}

func longLine(b *bars, i int) float64 {
	c := b.at(i)
	body := c.Body()
	if !b.isLongBody(i) || c.UpperShadow() >= longLineShadowPct*body || c.LowerShadow() >= longLineShadowPct*body {
		return 0
	}
	return colorSign(b, i)
}

func colorSign(b *bars, i int) float64 {
	c := b.at(i)
	switch {
	case c.IsBull():
		return bullish
	case c.IsBear():
		return bearish
	}
	return 0
}
