package tetris

import (
	"math"
	"time"
)

// Speed maps a level to the time it takes the tetromino to fall one row.
// SoftDrop is never slower than Fall for the same level.
type Speed interface {
	Fall(level int) time.Duration
	SoftDrop(level int) time.Duration
}

// frames per row for levels 0 to 29, the last entry applies from there on.
var classicFrames = [30]time.Duration{
	48, 43, 38, 33, 28, 23, 18, 13, 8, 6,
	5, 5, 5, 4, 4, 4, 3, 3, 3, 2,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 1,
}

// Classic is the NES gravity table. Based on https://tetris.wiki/Tetris_(NES,_Nintendo)
type Classic struct{}

func (Classic) Fall(level int) time.Duration {
	level = min(max(level, 0), len(classicFrames)-1)
	return classicFrames[level] * time.Second / 60
}

// SoftDrop is fixed at 2 frames per row.
func (c Classic) SoftDrop(level int) time.Duration {
	return min(2*time.Second/60, c.Fall(level))
}

// Modern follows the guideline gravity curve. Based on https://tetris.wiki/Marathon
//
// Time = (0.8-((Level-1)*0.007))^(Level-1)
type Modern struct{}

const (
	minFall      = time.Millisecond
	minSoftDrop  = 50 * time.Millisecond
	softDropRate = 20
)

func (Modern) Fall(level int) time.Duration {
	if level < 1 {
		return time.Second
	}
	base := 0.8 - float64(level-1)*0.007
	if base <= 0 {
		return minFall
	}
	seconds := math.Pow(base, float64(level-1))
	return max(time.Duration(seconds*float64(time.Second)), minFall)
}

// SoftDrop is 20 times the normal speed, but not under 50ms.
func (m Modern) SoftDrop(level int) time.Duration {
	fall := m.Fall(level)
	return min(max(fall/softDropRate, minSoftDrop), fall)
}
