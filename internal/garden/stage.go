package garden

import "fmt"

// StageThresholds maps each stage to the cumulative growth points needed to
// leave it. FLOWER's entry is never used as a transition target.
var StageThresholds = map[Stage]int{
	StageSeed:    50,
	StageSprout:  100,
	StageSapling: 200,
	StageFlower:  200,
}

// nextStage is the single step taken from each non-terminal stage.
var nextStage = map[Stage]Stage{
	StageSeed:    StageSprout,
	StageSprout:  StageSapling,
	StageSapling: StageFlower,
}

// Transition describes the outcome of one Grow call.
type Transition struct {
	From     Stage
	To       Stage
	Advanced bool
}

// Grow adds points and evaluates at most one stage transition, from the
// current stage only. A jump that crosses two thresholds still advances a
// single stage; the next Grow picks up the rest.
func (p *PlantInstance) Grow(points int) Transition {
	if points > 0 {
		p.GrowthPoints += points
	}
	t := Transition{From: p.Stage, To: p.Stage}
	next, ok := nextStage[p.Stage]
	if !ok {
		return t
	}
	if p.GrowthPoints >= StageThresholds[p.Stage] {
		p.Stage = next
		t.To = next
		t.Advanced = true
	}
	return t
}

// Progress returns how far the plant is through its current stage, in
// [0, 100]. A flowering plant is always at 100.
func Progress(p PlantInstance) float64 {
	var lower, upper int
	switch p.Stage {
	case StageSeed:
		lower, upper = 0, StageThresholds[StageSeed]
	case StageSprout:
		lower, upper = StageThresholds[StageSeed], StageThresholds[StageSprout]
	case StageSapling:
		lower, upper = StageThresholds[StageSprout], StageThresholds[StageSapling]
	default:
		return 100
	}
	pct := float64(p.GrowthPoints-lower) / float64(upper-lower) * 100
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

// CelebrationMessage is shown when a plant reaches a new stage.
func CelebrationMessage(name string, to Stage) string {
	switch to {
	case StageSprout:
		return fmt.Sprintf("%s 破土而出了！🌱", name)
	case StageSapling:
		return fmt.Sprintf("%s 正在茁壮成长！🌿", name)
	case StageFlower:
		return fmt.Sprintf("%s 终于绽放了！🌸", name)
	default:
		return ""
	}
}
