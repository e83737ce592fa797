package messages

import "math"

const (
	SkillCount = 18
	MaxLevel   = 99
)

var SkillNames = [SkillCount]string{
	"attack", "defense", "strength", "hits", "ranged", "prayer",
	"magic", "cooking", "woodcutting", "fletching", "fishing", "firemaking",
	"crafting", "smithing", "mining", "herblaw", "agility", "thieving",
}

// experienceTable[i] is the experience needed for level i+2.
var experienceTable = func() [MaxLevel]uint32 {
	var table [MaxLevel]uint32
	total := 0
	for i := range table {
		level := i + 1
		total += int(float64(level) + 300*math.Pow(2, float64(level)/7))
		table[i] = uint32(total) & 0xffffffc
	}
	return table
}()

// ExperienceForLevel returns the experience at which level is reached.
func ExperienceForLevel(level int) uint32 {
	if level <= 1 {
		return 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return experienceTable[level-2]
}

// ExperienceToLevel maps an experience total onto a level in [1, MaxLevel].
func ExperienceToLevel(experience uint32) uint8 {
	level := 1
	for _, threshold := range experienceTable[:MaxLevel-1] {
		if experience < threshold {
			break
		}
		level++
	}
	return uint8(level)
}
