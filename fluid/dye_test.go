package fluid

import (
	"math"
	"testing"
)

func transportParams() Params {
	return Params{
		DT:           1.0 / 60.0,
		Decay:        1,
		JacobiIters:  1,
		LiftMin:      0.6,
		LiftGain:     0.8,
		SedimentMin:  0.25,
		SedimentGain: 2.0,
		TransferRate: 1.5,
		DepositScale: 1,
	}
}

func TestLiftSediment(t *testing.T) {
	p := transportParams()

	tests := []struct {
		name          string
		speed         float32
		wantLiftZero  bool
		wantSedimZero bool
	}{
		{"still water settles", 0, true, false},
		{"dead band", 0.4, true, true},
		{"fast water lifts", 2.0, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lift, sediment := liftSediment(tt.speed, p)
			if (lift == 0) != tt.wantLiftZero {
				t.Errorf("lift = %v at speed %v", lift, tt.speed)
			}
			if (sediment == 0) != tt.wantSedimZero {
				t.Errorf("sediment = %v at speed %v", sediment, tt.speed)
			}
			if lift < 0 || lift > 1 || sediment < 0 || sediment > 1 {
				t.Errorf("factors out of [0,1]: lift %v, sediment %v", lift, sediment)
			}
		})
	}
}

func TestTransferCellConservesMass(t *testing.T) {
	p := transportParams()
	p.OozeRate = 0

	cases := []struct {
		name           string
		dye, chem      float32
		lift, sediment float32
	}{
		{"pickup", 0.2, 0.8, 1, 0},
		{"deposit", 0.7, 0.1, 0, 1},
		{"both idle", 0.3, 0.3, 0, 0},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			d, c := transferCell(tt.dye, tt.chem, tt.lift, tt.sediment, p)
			before := float64(tt.dye) + float64(tt.chem)
			after := float64(d) + float64(c)
			if math.Abs(before-after) > 1e-5 {
				t.Errorf("mass changed: %v -> %v", before, after)
			}
		})
	}
}

func TestTransferCellPickupDirection(t *testing.T) {
	p := transportParams()
	p.OozeRate = 0

	d, c := transferCell(0.1, 0.9, 1, 0, p)
	if d <= 0.1 || c >= 0.9 {
		t.Errorf("pickup did not move mass toward dye: dye %v, chem %v", d, c)
	}

	d, c = transferCell(0.9, 0.1, 0, 1, p)
	if d >= 0.9 || c <= 0.1 {
		t.Errorf("deposit did not move mass toward chem: dye %v, chem %v", d, c)
	}
}

func TestTransferCellSaturation(t *testing.T) {
	p := transportParams()
	p.OozeRate = 0
	p.TransferRate = 100 // force the per-tick fraction clamp

	// Dye already full: pickup must stop at the headroom.
	d, c := transferCell(1, 0.8, 1, 0, p)
	if d > 1 || d < 0 || c > 1 || c < 0 {
		t.Errorf("values escaped [0,1]: dye %v, chem %v", d, c)
	}
	if d != 1 {
		t.Errorf("full dye changed on pickup: %v", d)
	}
	if math.Abs(float64(c)-0.8) > 1e-6 {
		t.Errorf("chem drained past dye headroom: %v", c)
	}
}

func TestTransferCellFractionClamp(t *testing.T) {
	p := transportParams()
	p.OozeRate = 0
	p.TransferRate = 1e6

	// Even with an absurd rate, at most a quarter of the reservoir moves.
	d, c := transferCell(0, 1, 1, 0, p)
	if d > maxTransfer+1e-5 {
		t.Errorf("moved fraction %v exceeds %v", d, float32(maxTransfer))
	}
	if math.Abs(float64(d+c)-1) > 1e-5 {
		t.Errorf("mass changed: %v", d+c)
	}
}

func TestTransferCellOozeDoesNotDeplete(t *testing.T) {
	p := transportParams()
	p.OozeRate = 0.5

	d, c := transferCell(0, 0.6, 0, 1, p)
	if d <= 0 {
		t.Errorf("ooze produced no dye: %v", d)
	}
	// Deposit is zero (no dye to deposit), so chem must be untouched.
	if math.Abs(float64(c)-0.6) > 1e-6 {
		t.Errorf("ooze depleted the reservoir: %v", c)
	}
}

func TestDyeBlobStaysPutWithoutFlow(t *testing.T) {
	w, h := 32, 32
	chem := NewChemField(w*2, h*2)
	s := NewSolver(w, h, 2, nil, chem)

	p := transportParams()
	p.TransferRate = 0
	p.OozeRate = 0

	// 5x5 block of tracer dye at the dye-grid center.
	d := s.Dye()
	cx, cy := d.W/2, d.H/2
	for y := cy - 2; y <= cy+2; y++ {
		for x := cx - 2; x <= cx+2; x++ {
			d.V[(y*d.W+x)*DyeChannels+2] = 1
		}
	}
	initial := s.DyeTotal(2)

	for i := 0; i < 20; i++ {
		s.Step(p, nil)
	}

	total := s.DyeTotal(2)
	if math.Abs(total-initial)/initial > 0.02 {
		t.Errorf("tracer mass drifted: %v -> %v", initial, total)
	}

	// The blob blurs but stays centered: strong at the center, nothing in
	// the far corner.
	if c := d.At(cx, cy)[2]; c < 0.3 {
		t.Errorf("center concentration %v, want >= 0.3", c)
	}
	if c := d.At(2, 2)[2]; c > 1e-3 {
		t.Errorf("corner concentration %v, want ~0", c)
	}

	// Centroid unchanged within half a cell.
	var mx, my, m float64
	for y := 0; y < d.H; y++ {
		for x := 0; x < d.W; x++ {
			v := float64(d.V[(y*d.W+x)*DyeChannels+2])
			mx += v * float64(x)
			my += v * float64(y)
			m += v
		}
	}
	if math.Abs(mx/m-float64(cx)) > 0.5 || math.Abs(my/m-float64(cy)) > 0.5 {
		t.Errorf("centroid moved to (%v, %v)", mx/m, my/m)
	}
}

func TestEmitterDyeSaturatesLocally(t *testing.T) {
	w, h := 64, 64
	chem := NewChemField(w, h)
	s := NewSolver(w, h, 1, nil, chem)

	p := transportParams()
	p.TransferRate = 0
	p.OozeRate = 0

	// Dye-only fumarole: no force, just a steady tracer source.
	em := []Emitter{{
		Enabled: true,
		X:       0.5,
		Y:       0.5,
		Radius:  3,
		DyeRate: [4]float32{0, 0, 0.6, 0},
	}}

	for i := 0; i < 100; i++ {
		p.Tick = int32(i)
		s.Step(p, em)
	}

	d := s.Dye()
	if c := d.At(32, 32)[2]; c < 0.9 {
		t.Errorf("center concentration %v, want >= 0.9", c)
	}
	// The source clamps at 1, it never overshoots.
	for i := 2; i < len(d.V); i += DyeChannels {
		if d.V[i] < 0 || d.V[i] > 1 {
			t.Fatalf("concentration escaped [0,1]: %v", d.V[i])
		}
	}
	// Far from the source the field stays empty.
	if c := d.At(5, 5)[2]; c > 1e-3 {
		t.Errorf("far-field concentration %v, want ~0", c)
	}
}

func TestEscapeDecayShrinksTracer(t *testing.T) {
	w, h := 32, 32
	chem := NewChemField(w, h)
	s := NewSolver(w, h, 1, nil, chem)

	p := transportParams()
	p.TransferRate = 0
	p.EscapeRate = [4]float32{0, 0, 2.0, 0}

	d := s.Dye()
	for i := 2; i < len(d.V); i += DyeChannels {
		d.V[i] = 0.5
	}
	initial := s.DyeTotal(2)

	for i := 0; i < 30; i++ {
		s.Step(p, nil)
	}

	// exp(-2 * 30/60) = exp(-1) ~ 0.37 of the initial mass.
	total := s.DyeTotal(2)
	want := initial * math.Exp(-1)
	if math.Abs(total-want)/want > 0.05 {
		t.Errorf("escaped mass = %v, want ~%v", total, want)
	}
}

func TestDyeZeroedInSolids(t *testing.T) {
	w, h := 16, 16
	chem := NewChemField(w, h)
	s := NewSolver(w, h, 1, wallSlope(w, h, 8), chem)

	p := transportParams()
	p.ObstacleK = 12
	d := s.Dye()
	for i := range d.V {
		d.V[i] = 1
	}

	s.Step(p, nil)

	for y := 0; y < h; y++ {
		if c := d.At(8, y); c[0] != 0 || c[2] != 0 {
			t.Fatalf("dye inside solid column at y=%d: %v", y, c)
		}
	}
}

func TestDegradedModeDecay(t *testing.T) {
	w, h := 16, 16
	chem := NewChemField(w, h)
	s := NewSolver(w, h, 1, nil, chem)

	p := transportParams()
	p.Disabled = true

	// A uniform field stays uniform under the blur, so the decay factor is
	// observable exactly.
	d := s.Dye()
	for i := range d.V {
		d.V[i] = 1
	}

	s.Step(p, nil)
	if got := d.At(8, 8)[0]; math.Abs(float64(got)-degradedDecay) > 1e-4 {
		t.Errorf("degraded decay = %v, want %v", got, float32(degradedDecay))
	}

	// Velocity solve is skipped entirely.
	if ke := s.KineticEnergy(); ke != 0 {
		t.Errorf("velocity appeared in degraded mode: ke = %v", ke)
	}
}
