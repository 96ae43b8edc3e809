//go:build !nogpu

package wgpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/weebcore/atlas"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// mockDevice implements gpucontext.Device for testing.
type mockDevice struct{}

func (m *mockDevice) Poll(wait bool) {}
func (m *mockDevice) Destroy()       {}

// mockQueue implements gpucontext.Queue for testing.
type mockQueue struct{}

// mockAdapter implements gpucontext.Adapter for testing.
type mockAdapter struct{}

// mockProvider implements gpucontext.DeviceProvider without HAL access.
type mockProvider struct{}

func (m *mockProvider) Device() gpucontext.Device             { return &mockDevice{} }
func (m *mockProvider) Queue() gpucontext.Queue               { return &mockQueue{} }
func (m *mockProvider) Adapter() gpucontext.Adapter           { return &mockAdapter{} }
func (m *mockProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }

// halProvider adds HAL accessors to mockProvider.
type halProvider struct {
	mockProvider
	device any
	queue  any
}

func (h *halProvider) HalDevice() any { return h.device }
func (h *halProvider) HalQueue() any  { return h.queue }

func TestUploaderCreateTexture(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	u := New(device, queue)
	defer u.Destroy()

	id, err := u.CreateTexture(64)
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	if id == atlas.InvalidTexture {
		t.Fatal("expected valid texture id")
	}
	if u.View(id) == nil {
		t.Error("expected view for new texture")
	}
	if u.Len() != 1 {
		t.Errorf("Len() = %d, want 1", u.Len())
	}

	id2, err := u.CreateTexture(64)
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	if id2 == id {
		t.Error("texture ids should be distinct")
	}
}

func TestUploaderCreateInvalidSize(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	u := New(device, queue)
	if _, err := u.CreateTexture(0); err == nil {
		t.Error("expected error for zero size")
	}
	if u.Len() != 0 {
		t.Errorf("Len() = %d, want 0", u.Len())
	}
}

func TestUploaderUpload(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	u := New(device, queue)
	defer u.Destroy()

	id, err := u.CreateTexture(4)
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}

	pixels := make([]uint32, 16)
	pixels[0] = 0x80112233
	if err := u.UploadTexture(id, pixels, 4); err != nil {
		t.Fatalf("UploadTexture: %v", err)
	}
	if got := u.staging[0:4]; got[0] != 0x11 || got[1] != 0x22 || got[2] != 0x33 || got[3] != 0x80 {
		t.Errorf("staging[0:4] = %v, want [0x11 0x22 0x33 0x80]", got)
	}

	if err := u.UploadTexture(id, pixels, 8); err == nil {
		t.Error("expected error for size mismatch")
	}
	if err := u.UploadTexture(id+100, pixels, 4); !errors.Is(err, ErrUnknownTexture) {
		t.Errorf("unknown texture: got %v, want ErrUnknownTexture", err)
	}
}

func TestUploaderDestroyTexture(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	u := New(device, queue)
	id, err := u.CreateTexture(8)
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}

	u.DestroyTexture(id)
	if u.View(id) != nil {
		t.Error("view should be gone after DestroyTexture")
	}
	u.DestroyTexture(id) // no-op
	if u.Len() != 0 {
		t.Errorf("Len() = %d, want 0", u.Len())
	}
}

func TestUploaderWithManager(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	u := New(device, queue)
	defer u.Destroy()

	m, err := atlas.New(atlas.Config{PageSize: 32}, atlas.WithUploader(u))
	if err != nil {
		t.Fatalf("atlas.New: %v", err)
	}

	h, err := m.Allocate(16, 16)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if err := m.Write(h, make([]uint32, 256), 16, 16, 0, 0); err != nil {
		t.Fatalf("Write: %v", err)
	}
	block := []uint32{0xFFFFFFFF}
	if err := m.Write(h, block, 1, 1, 0, 0); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := m.FlushDirty(); err != nil {
		t.Fatalf("FlushDirty: %v", err)
	}

	pl, err := m.Placement(h)
	if err != nil {
		t.Fatalf("Placement: %v", err)
	}
	if u.View(pl.Texture) == nil {
		t.Error("page texture should have a view")
	}

	m.Close()
	if u.Len() != 0 {
		t.Errorf("Len() after Close = %d, want 0", u.Len())
	}
}

func TestNewFromProvider(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	u, err := NewFromProvider(&halProvider{device: device, queue: queue})
	if err != nil {
		t.Fatalf("NewFromProvider: %v", err)
	}
	if u.device != device || u.queue != queue {
		t.Error("device or queue not stored correctly")
	}
}

func TestNewFromProviderWithoutHAL(t *testing.T) {
	tests := []struct {
		name     string
		provider gpucontext.DeviceProvider
	}{
		{"no hal methods", &mockProvider{}},
		{"wrong device type", &halProvider{device: "device", queue: nil}},
		{"nil queue", &halProvider{device: nil, queue: nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFromProvider(tt.provider)
			if !errors.Is(err, ErrNoHAL) {
				t.Errorf("NewFromProvider() error = %v, want ErrNoHAL", err)
			}
		})
	}
}

func TestArgbToRGBAReusesBuffer(t *testing.T) {
	buf := make([]byte, 0, 16)
	out := argbToRGBA(buf, []uint32{0x01020304, 0x05060708})
	if len(out) != 8 {
		t.Fatalf("len = %d, want 8", len(out))
	}
	if &out[0] != &buf[:1][0] {
		t.Error("expected buffer reuse")
	}
	want := []byte{2, 3, 4, 1, 6, 7, 8, 5}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %d, want %d", i, out[i], want[i])
		}
	}
}
