package model

// DecayRecord is one row of the half-life table: a nuclide, its decay mode,
// and the total decay energy. TauS is always derived from HalfLifeS at
// ingest; it is never read from input.
type DecayRecord struct {
	Z         int       `json:"Z"`           // Proton number
	A         int       `json:"A"`           // Mass number
	N         int       `json:"N"`           // Neutron number, always A - Z
	Mode      DecayMode `json:"mode"`        // beta- or EC
	HalfLifeS float64   `json:"half_life_s"` // Half-life in seconds
	TauS      float64   `json:"tau_s"`       // Mean lifetime, half_life_s / ln 2
	QMeV      float64   `json:"Q_mev"`       // Ground-state decay energy, MeV
}

// TransitionRecord is one row of the transition-strength table: a single
// decay branch with its logft value and channel flags.
type TransitionRecord struct {
	Z                   int     `json:"Z"`
	A                   int     `json:"A"`
	BranchID            string  `json:"branch_id"`
	Logft               float64 `json:"logft"`
	IsDominant          bool    `json:"is_dominant"`           // Exactly one per (Z,A) after filtering
	FeedsExcitedState   bool    `json:"feeds_excited_state"`   // Branch feeds a daughter excited state
	ExcitationEnergyMeV float64 `json:"excitation_energy_mev"` // Daughter level energy, MeV (>= 0)
}

// MergedRecord is a decay row joined with its dominant transition branch.
// QEffMeV accounts for excited-state feeding; G is the phase-space factor
// evaluated at (Z, QEff). GSatz is descriptive only and never a predictor.
type MergedRecord struct {
	Z       int       `json:"Z"`
	A       int       `json:"A"`
	N       int       `json:"N"`
	Mode    DecayMode `json:"mode"`
	TauS    float64   `json:"tau_s"`
	QEffMeV float64   `json:"Q_eff_mev"` // Q minus excitation energy when the branch feeds an excited state
	Logft   float64   `json:"logft"`
	G       float64   `json:"G"`      // Phase-space factor at (Z, QEff)
	GSatz   int       `json:"G_satz"` // Neutron excess N - Z, descriptive column
}

// ResidualRecord is a merged row with the frozen-law prediction applied.
// DeltaStruct is the structural residual in dex.
type ResidualRecord struct {
	MergedRecord

	Log10TauPred float64     `json:"log10_tau_pred"` // alpha + delta*logft - log10(G)
	DeltaStruct  float64     `json:"delta_struct"`   // log10(tau_s) - log10_tau_pred
	ParityClass  ParityClass `json:"parity_class"`
}

// DecayMode identifies the decay channel
type DecayMode string

const (
	ModeBetaMinus DecayMode = "beta-" // Electron emission
	ModeEC        DecayMode = "EC"    // Electron capture
)

// ParityClass classifies a nuclide by the parity of Z and N
type ParityClass string

const (
	ParityEvenEven ParityClass = "even-even" // Z even, N even
	ParityOddA     ParityClass = "odd-A"     // Exactly one of Z, N odd
	ParityOddOdd   ParityClass = "odd-odd"   // Z odd, N odd
)

// FrozenLawParams holds the two coefficients of the frozen scaling law
// log10(tau) = alpha + delta*logft - log10(G). Fit once in Phase I and
// immutable afterwards; Provenance carries any extra keys found in the
// params file so they survive a re-save, but nothing in the computation
// reads them.
type FrozenLawParams struct {
	Alpha float64 `json:"alpha"`
	Delta float64 `json:"delta"`

	Provenance map[string]interface{} `json:"-"`
}
