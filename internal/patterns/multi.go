package patterns

func engulfing(b *bars, i int) float64 {
	c1, c2 := b.at(i-1), b.at(i)
	switch {
	case c1.IsBear() && c2.IsBull() &&
		c2.Open <= c1.Close && c2.Close >= c1.Open &&
		(c2.Open < c1.Close || c2.Close > c1.Open):
		return bullish
	case c1.IsBull() && c2.IsBear() &&
		c2.Open >= c1.Close && c2.Close <= c1.Open &&
		(c2.Open > c1.Close || c2.Close < c1.Open):
		return bearish
	}
	return 0
}

// insideBody reports the second real body contained in the first.
func insideBody(b *bars, first, second int) bool {
	c1, c2 := b.at(first), b.at(second)
	return c2.BodyTop() <= c1.BodyTop() && c2.BodyBottom() >= c1.BodyBottom()
}

func harami(b *bars, i int) float64 {
	if !b.isLongBody(i-1) || !b.isShortBody(i) || !insideBody(b, i-1, i) {
		return 0
	}
	return -colorSign(b, i-1)
}

func piercing(b *bars, i int) float64 {
	c1, c2 := b.at(i-1), b.at(i)
	if c1.IsBear() && b.isLongBody(i-1) && c2.IsBull() && b.isLongBody(i) &&
		c2.Open < c1.Low &&
		c2.Close > c1.Close+c1.Body()*piercingMinimum &&
		c2.Close < c1.Open {
		return bullish
	}
	return 0
}

func darkCloudCover(b *bars, i int) float64 {
	c1, c2 := b.at(i-1), b.at(i)
	if c1.IsBull() && b.isLongBody(i-1) && c2.IsBear() &&
		c2.Open > c1.High &&
		c2.Close < c1.Close-c1.Body()*piercingMinimum &&
		c2.Close > c1.Open {
		return bearish
	}
	return 0
}

func kicking(b *bars, i int) float64 {
	s1, s2 := marubozu(b, i-1), marubozu(b, i)
	c1, c2 := b.at(i-1), b.at(i)
	switch {
	case s1 == bearish && s2 == bullish && c2.Low > c1.High:
		return bullish
	case s1 == bullish && s2 == bearish && c2.High < c1.Low:
		return bearish
	}
	return 0
}

func morningStar(b *bars, i int) float64 {
	c1, c2, c3 := b.at(i-2), b.at(i-1), b.at(i)
	if c1.IsBear() && b.isLongBody(i-2) &&
		b.isShortBody(i-1) && c2.BodyTop() < c1.Close &&
		c3.IsBull() && c3.Close > c1.Close+c1.Body()*starPenetration {
		return bullish
	}
	return 0
}

func eveningStar(b *bars, i int) float64 {
	c1, c2, c3 := b.at(i-2), b.at(i-1), b.at(i)
	if c1.IsBull() && b.isLongBody(i-2) &&
		b.isShortBody(i-1) && c2.BodyBottom() > c1.Close &&
		c3.IsBear() && c3.Close < c1.Close-c1.Body()*starPenetration {
		return bearish
	}
	return 0
}

func threeWhiteSoldiers(b *bars, i int) float64 {
	for j := i - 2; j <= i; j++ {
		c := b.at(j)
		if !c.IsBull() || b.isShortBody(j) || !b.isVeryShortShadow(c.UpperShadow(), j) {
			return 0
		}
		if j > i-2 {
			prev := b.at(j - 1)
			if c.Close <= prev.Close || c.Open < prev.Open || c.Open > prev.Close {
				return 0
			}
		}
	}
	return bullish
}

func threeBlackCrows(b *bars, i int) float64 {
	for j := i - 2; j <= i; j++ {
		c := b.at(j)
		if !c.IsBear() || b.isShortBody(j) || !b.isVeryShortShadow(c.LowerShadow(), j) {
			return 0
		}
		if j > i-2 {
			prev := b.at(j - 1)
			if c.Close >= prev.Close || c.Open > prev.Open || c.Open < prev.Close {
				return 0
			}
		}
	}
	return bearish
}

func threeInside(b *bars, i int) float64 {
	if harami(b, i-1) == 0 {
		return 0
	}
	c1, c3 := b.at(i-2), b.at(i)
	switch {
	case c1.IsBear() && c3.Close > c1.Open:
		return bullish
	case c1.IsBull() && c3.Close < c1.Open:
		return bearish
	}
	return 0
}
