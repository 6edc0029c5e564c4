package sky

import (
	"context"
	"errors"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/image/tiff"

	"github.com/Faultbox/midgard-sky/pkg/atmosphere"
)

func noonSnapshot() Snapshot {
	p := atmosphere.Earth()
	return Snapshot{
		Params: p,
		Origin: p.ObserverOrigin(1000),
		Sun:    mgl64.Vec3{0, 1, 0},
	}
}

func TestFaceCentres(t *testing.T) {
	want := map[Face]mgl64.Vec3{
		PositiveX: {1, 0, 0},
		NegativeX: {-1, 0, 0},
		PositiveY: {0, 1, 0},
		NegativeY: {0, -1, 0},
		PositiveZ: {0, 0, 1},
		NegativeZ: {0, 0, -1},
	}
	for face, w := range want {
		if got := face.Direction(0, 0); !got.ApproxEqual(w) {
			t.Errorf("%s centre = %v, want %v", face, got, w)
		}
	}
}

func TestFaceEdgesMeet(t *testing.T) {
	// Right edge of +X is the left edge of -Z.
	for _, v := range []float64{-1, -0.3, 0, 0.8} {
		a := PositiveX.Direction(1, v)
		b := NegativeZ.Direction(-1, v)
		if !a.ApproxEqualThreshold(b, 1e-12) {
			t.Errorf("v=%v: +X edge %v != -Z edge %v", v, a, b)
		}
	}
	// Top edge of +Z is the bottom edge of +Y.
	for _, u := range []float64{-1, 0, 0.5} {
		a := PositiveZ.Direction(u, -1)
		b := PositiveY.Direction(u, 1)
		if !a.ApproxEqualThreshold(b, 1e-12) {
			t.Errorf("u=%v: +Z edge %v != +Y edge %v", u, a, b)
		}
	}
}

func TestFaceString(t *testing.T) {
	if PositiveX.String() != "px" || NegativeZ.String() != "nz" {
		t.Errorf("unexpected face names %s %s", PositiveX, NegativeZ)
	}
	if Face(9).String() != "invalid" {
		t.Errorf("Face(9).String() = %s", Face(9))
	}
}

func TestBakeCubemapMatchesModel(t *testing.T) {
	snap := noonSnapshot()
	b := NewBaker(2)

	cm, err := b.BakeCubemap(context.Background(), snap, 8)
	if err != nil {
		t.Fatalf("BakeCubemap: %v", err)
	}

	for _, face := range Faces {
		for _, xy := range [][2]int{{0, 0}, {3, 5}, {7, 7}} {
			q := atmosphere.Query{
				Origin:       snap.Origin,
				Direction:    face.texelDirection(xy[0], xy[1], 8),
				SunDirection: snap.Sun,
			}
			want := b.Model.Evaluate(snap.Params, q)
			got := cm.Face(face).At(xy[0], xy[1])
			for c := 0; c < 3; c++ {
				if float32(got[c]) != float32(want[c]) {
					t.Errorf("%s %v channel %d = %v, want %v", face, xy, c, got[c], want[c])
				}
			}
		}
	}
}

func TestBakeIndependentOfWorkers(t *testing.T) {
	snap := noonSnapshot()
	one, err := NewBaker(1).BakeCubemap(context.Background(), snap, 6)
	if err != nil {
		t.Fatal(err)
	}
	many, err := NewBaker(5).BakeCubemap(context.Background(), snap, 6)
	if err != nil {
		t.Fatal(err)
	}

	for _, face := range Faces {
		a, b := one.Face(face).Pix, many.Face(face).Pix
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("%s differs at %d: %v vs %v", face, i, a[i], b[i])
			}
		}
	}
}

func TestBakeZenithIsBlue(t *testing.T) {
	cm, err := NewBaker(0).BakeCubemap(context.Background(), noonSnapshot(), 4)
	if err != nil {
		t.Fatal(err)
	}
	c := cm.Face(PositiveY).At(2, 2)
	if c[2] <= c[0] {
		t.Errorf("zenith texel %v should be blue", c)
	}
}

func TestBakeProgress(t *testing.T) {
	b := NewBaker(3)

	var mu sync.Mutex
	calls, last := 0, 0
	b.Progress = func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if total != 6*4 {
			t.Errorf("total = %d, want %d", total, 6*4)
		}
		if done > last {
			last = done
		}
	}

	if _, err := b.BakeCubemap(context.Background(), noonSnapshot(), 4); err != nil {
		t.Fatal(err)
	}
	if calls != 24 || last != 24 {
		t.Errorf("progress calls = %d, last = %d, want 24 and 24", calls, last)
	}
}

func TestBakeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBaker(2).BakeCubemap(ctx, noonSnapshot(), 8)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("BakeCubemap with cancelled context = %v, want context.Canceled", err)
	}
}

func TestBakeRejectsBadSize(t *testing.T) {
	b := NewBaker(1)
	if _, err := b.BakeCubemap(context.Background(), noonSnapshot(), 0); err == nil {
		t.Error("expected error for zero cubemap size")
	}
	if _, err := b.BakePanorama(context.Background(), noonSnapshot(), 4, -1); err == nil {
		t.Error("expected error for negative panorama height")
	}
}

func TestBakePanorama(t *testing.T) {
	img, err := NewBaker(3).BakePanorama(context.Background(), noonSnapshot(), 16, 8)
	if err != nil {
		t.Fatal(err)
	}
	if img.Width != 16 || img.Height != 8 {
		t.Fatalf("panorama size = %dx%d", img.Width, img.Height)
	}

	top := img.At(0, 0)
	if top[2] <= top[0] {
		t.Errorf("top row %v should be blue", top)
	}
	if d := panoramaDirection(5, 0, 16, 8); d.Y() < 0.9 {
		t.Errorf("row 0 direction %v should point up", d)
	}
	if d := panoramaDirection(5, 7, 16, 8); d.Y() > -0.9 {
		t.Errorf("last row direction %v should point down", d)
	}
}

func TestSkyStatic(t *testing.T) {
	s := New(Static, 4, NewBaker(1))
	ctx := context.Background()
	snap := noonSnapshot()

	if s.Cubemap() != nil {
		t.Fatal("cubemap before first update")
	}
	if baked, err := s.Update(ctx, snap); err != nil || !baked {
		t.Fatalf("first Update = %v, %v; want bake", baked, err)
	}

	moved := snap
	moved.Sun = mgl64.Vec3{1, 1, 0}.Normalize()
	if baked, _ := s.Update(ctx, moved); baked {
		t.Error("static sky should not re-bake on change")
	}

	s.Invalidate()
	if baked, _ := s.Update(ctx, moved); !baked {
		t.Error("Invalidate should force a bake")
	}
	if s.Bakes() != 2 {
		t.Errorf("Bakes() = %d, want 2", s.Bakes())
	}
	if s.Snapshot() != moved {
		t.Error("snapshot not recorded")
	}
}

func TestSkyDynamic(t *testing.T) {
	s := New(Dynamic, 4, NewBaker(1))
	ctx := context.Background()
	snap := noonSnapshot()

	s.Update(ctx, snap)
	if baked, _ := s.Update(ctx, snap); baked {
		t.Error("unchanged snapshot should not re-bake")
	}

	moved := snap
	moved.Params.SunIntensity = 10
	if baked, _ := s.Update(ctx, moved); !baked {
		t.Error("changed snapshot should re-bake")
	}
	if s.Bakes() != 2 {
		t.Errorf("Bakes() = %d, want 2", s.Bakes())
	}
}

func TestSkyUpdateError(t *testing.T) {
	s := New(Dynamic, 4, NewBaker(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Update(ctx, noonSnapshot()); err == nil {
		t.Fatal("expected error from cancelled bake")
	}
	if s.Cubemap() != nil {
		t.Error("failed bake should not replace the cubemap")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"static", Static, false},
		{"Dynamic", Dynamic, false},
		{"", Static, false},
		{"sometimes", Static, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseMode(%q) = %v, %v", tt.in, got, err)
		}
	}
	if Dynamic.String() != "dynamic" || Static.String() != "static" {
		t.Error("unexpected Mode.String()")
	}
}

func TestToneMap(t *testing.T) {
	tm := DefaultToneMap()

	if tm.Apply(0) != 0 || tm.Apply(-1) != 0 || tm.Apply(math.NaN()) != 0 {
		t.Error("non-positive input should map to 0")
	}
	if got := tm.Apply(1e6); got != 1 {
		t.Errorf("Apply(1e6) = %v, want 1", got)
	}
	prev := 0.0
	for _, c := range []float64{0.01, 0.1, 0.5, 1, 3} {
		v := tm.Apply(c)
		if v <= prev || v > 1 {
			t.Errorf("Apply(%v) = %v, not increasing within (0, 1]", c, v)
		}
		prev = v
	}
}

func TestWriteCubemap(t *testing.T) {
	cm, err := NewBaker(2).BakeCubemap(context.Background(), noonSnapshot(), 4)
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(t.TempDir(), "out")

	paths, err := WriteCubemap(dir, "noon", cm, DefaultToneMap(), FormatPNG)
	if err != nil {
		t.Fatalf("WriteCubemap: %v", err)
	}
	if len(paths) != 6 {
		t.Fatalf("wrote %d files, want 6", len(paths))
	}
	if filepath.Base(paths[2]) != "noon_py.png" {
		t.Errorf("third file = %s, want noon_py.png", paths[2])
	}

	f, err := os.Open(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding face: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 4 {
		t.Errorf("face size = %v, want 4x4", b)
	}
}

func TestWriteCrossTIFF(t *testing.T) {
	cm, err := NewBaker(2).BakeCubemap(context.Background(), noonSnapshot(), 4)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "cross.tiff")

	if err := WriteImage(path, Cross(cm, DefaultToneMap()), FormatTIFF); err != nil {
		t.Fatalf("WriteImage: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := tiff.Decode(f)
	if err != nil {
		t.Fatalf("decoding tiff: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 12 {
		t.Errorf("cross size = %v, want 16x12", b)
	}
	// Top-left cell is empty.
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Errorf("empty cell alpha = %d, want 0", a)
	}
}

func TestWriteImageRemovesPartialFile(t *testing.T) {
	// png rejects a 0x0 image after the file has been created.
	path := filepath.Join(t.TempDir(), "empty.png")
	err := WriteImage(path, image.NewRGBA(image.Rect(0, 0, 0, 0)), FormatPNG)
	if err == nil {
		t.Fatal("expected error for empty image")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file left behind after failed encode (stat err %v)", err)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"png": FormatPNG, "TIF": FormatTIFF, "tiff": FormatTIFF, "": FormatPNG} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("exr"); err == nil {
		t.Error("expected error for exr")
	}
	if FormatTIFF.Ext() != ".tiff" || FormatPNG.Ext() != ".png" {
		t.Error("unexpected extensions")
	}
}
