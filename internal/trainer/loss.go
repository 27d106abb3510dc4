package trainer

import "curve-gan/internal/autodiff"

// probEpsilon keeps probabilities off 0 and 1 before they reach a log.
const probEpsilon = 1e-7

func clampProb(t *autodiff.Tape, p *autodiff.Node) *autodiff.Node {
	return t.Clamp(p, probEpsilon, 1-probEpsilon)
}

// discriminatorLoss is -mean(log(pReal) + log(1 - pFake)).
func discriminatorLoss(t *autodiff.Tape, pFake, pReal *autodiff.Node) *autodiff.Node {
	onReal := t.Log(clampProb(t, pReal))
	onFake := t.Log(t.OneMinus(clampProb(t, pFake)))
	return t.Neg(t.Mean(t.Add(onReal, onFake)))
}

// generatorLoss is mean(log(1 - pFake)), minimized by the generator.
func generatorLoss(t *autodiff.Tape, pFake *autodiff.Node) *autodiff.Node {
	return t.Mean(t.Log(t.OneMinus(clampProb(t, pFake))))
}
