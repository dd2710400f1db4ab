package rigid2d

import "math"

// Tuning constants, ported unchanged from CommonB2Settings.go's numeric
// defaults. DefaultStepConfig copies the tunable ones into a StepConfig, but
// only the contact solver reads LinearSlop and MaxLinearCorrection back from
// it: the joints, the TOI computer and the broad phase's proxy fattening use
// these constants directly, and the StepConfig fields AngularSlop,
// MaxAngularCorrection, AABBExtension and DisplaceMultiplier are not read.
const (
	maxManifoldPoints = 2
	maxPolygonVertices = 8

	aabbExtensionDefault   = 0.1
	aabbMultiplierDefault  = 2.0
	linearSlopDefault      = 0.005
	angularSlopDefault     = 2.0 / 180.0 * math.Pi
	polygonRadiusDefault   = 2.0 * linearSlopDefault
	maxSubStepsDefault     = 8

	maxTOIContacts = 32

	velocityThreshold = 1.0

	maxLinearCorrectionDefault  = 0.2
	maxAngularCorrectionDefault = 8.0 / 180.0 * math.Pi

	maxTranslationDefault = 2.0
	maxRotationDefault    = 0.5 * math.Pi

	baumgarte    = 0.2
	toiBaumgarte = 0.75

	timeToSleepDefault             = 0.5
	linearSleepToleranceDefault    = 0.01
	angularSleepToleranceDefault   = 2.0 / 180.0 * math.Pi

	regMinMomentumDefault  = 0.0
	regMinSeparationDefault = -3.0 * linearSlopDefault
	toiMinMomentumDefault  = 0.0
	toiMinSeparationDefault = -1.5 * linearSlopDefault

	maxDistanceItersDefault = 20
	maxTOIItersDefault      = 20
	maxRootItersDefault     = 50

	epsilon = 1.1920929e-7 // float32 machine epsilon, matches the teacher's b2_epsilon
)

// StepConfig collects every tunable named in the external-interfaces
// section: iteration bounds, position-correction slop, sleeping
// thresholds, proxy fattening, per-step velocity caps and feature toggles.
// DefaultStepConfig returns the teacher's own numeric defaults; callers
// override individual fields as needed, the way setanarut-cm and
// jakecoffman-cp expose their own tunables as plain struct fields rather
// than through a config-file loader.
type StepConfig struct {
	Dt      float64
	DtRatio float64

	RegVelocityIterations int
	RegPositionIterations int
	RegMinMomentum        float64
	RegMinSeparation      float64

	TOIVelocityIterations int
	TOIPositionIterations int
	TOIMinMomentum        float64
	TOIMinSeparation      float64

	MaxSubSteps int

	MaxDistanceIters int
	MaxTOIIters      int
	MaxRootIters     int

	LinearSlop          float64
	AngularSlop         float64
	MaxLinearCorrection float64
	MaxAngularCorrection float64

	LinearSleepTolerance  float64
	AngularSleepTolerance float64
	MinStillTime          float64

	AABBExtension     float64
	DisplaceMultiplier float64

	MaxTranslation float64
	MaxRotation    float64

	DoWarmStart bool
	DoTOI       bool

	SubStepping bool
}

func DefaultStepConfig() StepConfig {
	return StepConfig{
		Dt:      1.0 / 60.0,
		DtRatio: 1.0,

		RegVelocityIterations: 8,
		RegPositionIterations: 3,
		RegMinMomentum:        regMinMomentumDefault,
		RegMinSeparation:      regMinSeparationDefault,

		TOIVelocityIterations: 8,
		TOIPositionIterations: 20,
		TOIMinMomentum:        toiMinMomentumDefault,
		TOIMinSeparation:      toiMinSeparationDefault,

		MaxSubSteps: maxSubStepsDefault,

		MaxDistanceIters: maxDistanceItersDefault,
		MaxTOIIters:      maxTOIItersDefault,
		MaxRootIters:     maxRootItersDefault,

		LinearSlop:           linearSlopDefault,
		AngularSlop:          angularSlopDefault,
		MaxLinearCorrection:  maxLinearCorrectionDefault,
		MaxAngularCorrection: maxAngularCorrectionDefault,

		LinearSleepTolerance:  linearSleepToleranceDefault,
		AngularSleepTolerance: angularSleepToleranceDefault,
		MinStillTime:          timeToSleepDefault,

		AABBExtension:      aabbExtensionDefault,
		DisplaceMultiplier: aabbMultiplierDefault,

		MaxTranslation: maxTranslationDefault,
		MaxRotation:    maxRotationDefault,

		DoWarmStart: true,
		DoTOI:       true,
	}
}

// StepStats reports what happened during one Step call: solver progress and
// bookkeeping counters a caller can use for profiling or test assertions.
type StepStats struct {
	IslandsFound   int
	IslandsSolved  int

	ContactsAdded          int
	ContactsUpdated        int
	ContactsSkipped        int
	ContactsDestroyed      int
	ContactsAtMaxSubSteps  int
	TouchingUpdated        int
	TouchingSkipped        int

	ProxiesMoved int

	MinSeparation       float64
	MaxIncrementalImpulse float64

	VelocityIterationsSum int
	PositionIterationsSum int

	MaxTOIIters     int
	MaxRootIters    int

	BodiesSlept int
}
