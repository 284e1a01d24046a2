package canopy

import "testing"

func newTestColorMatrix() *ColorMatrixStates {
	s := &ColorMatrixStates{RenderStates: &RenderStates{}}
	s.SetMatrix([20]float64{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	})
	return s
}

func TestColorMatrixIdentityUniform(t *testing.T) {
	s := newTestColorMatrix()
	m, ok := s.Uniforms["Matrix"].([]float32)
	if !ok || len(m) != 20 {
		t.Fatalf("Matrix uniform = %#v, want 20 floats", s.Uniforms["Matrix"])
	}
	for i, v := range m {
		want := float32(0)
		if i == 0 || i == 6 || i == 12 || i == 18 {
			want = 1
		}
		if v != want {
			t.Errorf("Matrix[%d] = %f, want %f", i, v, want)
		}
	}
}

func TestColorMatrixSetBrightness(t *testing.T) {
	s := newTestColorMatrix()
	s.SetBrightness(0.5)
	if s.matrix[4] != 0.5 || s.matrix[9] != 0.5 || s.matrix[14] != 0.5 {
		t.Error("brightness offsets should be 0.5")
	}
	if s.matrix[19] != 0 {
		t.Error("alpha offset should stay 0")
	}
}

func TestColorMatrixSetContrast(t *testing.T) {
	s := newTestColorMatrix()
	s.SetContrast(2.0)
	if s.matrix[0] != 2.0 || s.matrix[6] != 2.0 || s.matrix[12] != 2.0 {
		t.Error("contrast diagonal should be 2.0")
	}
	if s.matrix[4] != -0.5 || s.matrix[9] != -0.5 || s.matrix[14] != -0.5 {
		t.Error("contrast offset should be -0.5")
	}
}

func TestColorMatrixSetSaturation(t *testing.T) {
	s := newTestColorMatrix()
	s.SetSaturation(0)
	assertNear32(t, "matrix[0]", s.matrix[0], 0.299)
	assertNear32(t, "matrix[1]", s.matrix[1], 0.587)
	assertNear32(t, "matrix[2]", s.matrix[2], 0.114)
}

func TestToneUniformsClamp(t *testing.T) {
	u := toneUniforms(2, -2, 0.25, 1.5)["Tone"].([]float32)
	want := []float32{1, -1, 0.25, 1}
	for i := range want {
		if u[i] != want[i] {
			t.Errorf("Tone[%d] = %f, want %f", i, u[i], want[i])
		}
	}
}

func TestNewBlendStates(t *testing.T) {
	s := NewBlendStates(BlendScreen)
	if s.Blend != BlendScreen || s.Shader != nil {
		t.Errorf("states = %+v, want screen blend and no shader", s)
	}
}

func assertNear32(t *testing.T, name string, got float32, want float64) {
	t.Helper()
	if d := float64(got) - want; d > 1e-6 || d < -1e-6 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}
