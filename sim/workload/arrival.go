package workload

import (
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/pdevs-sim/pdevs-sim/sim"
)

// ArrivalSampler generates the intervals between successive stimuli of a stream.
type ArrivalSampler interface {
	// SampleInterval returns the next interval in ticks. Always >= 1.
	SampleInterval(rng *rand.Rand) sim.Time
}

// ConstantSampler emits at a fixed interval (CV=0).
type ConstantSampler struct {
	interval sim.Time
}

func (s *ConstantSampler) SampleInterval(*rand.Rand) sim.Time {
	return s.interval
}

// PoissonSampler generates exponentially-distributed intervals (CV=1).
type PoissonSampler struct {
	mean float64
}

func (s *PoissonSampler) SampleInterval(rng *rand.Rand) sim.Time {
	return atLeastOneTick(rng.ExpFloat64() * s.mean)
}

// GammaSampler generates Gamma-distributed intervals. CV > 1 produces bursts
// of closely spaced readings separated by long gaps.
type GammaSampler struct {
	shape float64 // 1/CV²
	scale float64 // mean·CV²
}

func (s *GammaSampler) SampleInterval(rng *rand.Rand) sim.Time {
	return atLeastOneTick(gammaRand(rng, s.shape, s.scale))
}

// gammaRand samples Gamma(shape, scale) with Marsaglia-Tsang for shape >= 1
// and Gamma(a) = Gamma(a+1)·U^(1/a) below that.
func gammaRand(rng *rand.Rand, shape, scale float64) float64 {
	if shape < 1.0 {
		u := rng.Float64()
		return gammaRand(rng, shape+1.0, scale) * math.Pow(u, 1.0/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)
	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1.0 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1.0-0.0331*(x*x)*(x*x) {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// WeibullSampler generates Weibull-distributed intervals.
type WeibullSampler struct {
	shape float64 // k
	scale float64 // λ, in ticks
}

func (s *WeibullSampler) SampleInterval(rng *rand.Rand) sim.Time {
	u := rng.Float64()
	if u == 0 {
		u = math.SmallestNonzeroFloat64
	}
	return atLeastOneTick(s.scale * math.Pow(-math.Log(u), 1.0/s.shape))
}

func atLeastOneTick(v float64) sim.Time {
	if v < 1 || math.IsNaN(v) {
		return 1
	}
	if v >= float64(math.MaxInt64/2) {
		return sim.Time(math.MaxInt64 / 2)
	}
	return sim.Time(v)
}

// NewArrivalSampler creates an ArrivalSampler for a validated spec.
func NewArrivalSampler(spec ArrivalSpec) ArrivalSampler {
	mean := spec.MeanInterval
	cv := 1.0
	if spec.CV != nil && *spec.CV > 0 {
		cv = *spec.CV
	}
	switch spec.Process {
	case "constant":
		return &ConstantSampler{interval: atLeastOneTick(mean)}

	case "gamma":
		shape := 1.0 / (cv * cv)
		if shape < 0.01 {
			logrus.Warnf("gamma shape %.4f (CV=%.1f) is very small; falling back to poisson", shape, cv)
			return &PoissonSampler{mean: mean}
		}
		return &GammaSampler{shape: shape, scale: mean * cv * cv}

	case "weibull":
		k := weibullShapeFromCV(cv)
		return &WeibullSampler{shape: k, scale: mean / math.Gamma(1.0+1.0/k)}

	default:
		return &PoissonSampler{mean: mean}
	}
}

// weibullShapeFromCV bisects for k such that CV² = Γ(1+2/k)/Γ(1+1/k)² - 1,
// with k in [0.1, 100].
func weibullShapeFromCV(targetCV float64) float64 {
	lo, hi := 0.1, 100.0
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2.0
		cv := weibullCV(mid)
		if math.Abs(cv-targetCV) < 0.001 {
			return mid
		}
		// CV decreases as k grows
		if cv > targetCV {
			lo = mid
		} else {
			hi = mid
		}
	}
	logrus.Warnf("weibullShapeFromCV: no convergence for CV=%.3f; using k=%.3f", targetCV, (lo+hi)/2.0)
	return (lo + hi) / 2.0
}

func weibullCV(k float64) float64 {
	g1 := math.Gamma(1.0 + 1.0/k)
	g2 := math.Gamma(1.0 + 2.0/k)
	return math.Sqrt(g2/(g1*g1) - 1.0)
}
