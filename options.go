package atlas

// Option configures a Manager during creation.
//
// Example:
//
//	// Logical textures only
//	m, err := atlas.New(atlas.DefaultConfig())
//
//	// Upload through a backend
//	m, err := atlas.New(atlas.DefaultConfig(), atlas.WithUploader(sw))
type Option func(*managerOptions)

// managerOptions holds optional configuration for Manager creation.
type managerOptions struct {
	uploader TextureUploader
}

// defaultOptions returns the default manager options.
func defaultOptions() managerOptions {
	return managerOptions{
		uploader: nil, // Will be set to a logical uploader if nil
	}
}

// WithUploader sets the texture collaborator that receives page textures.
// See backend/software and backend/wgpu.
func WithUploader(u TextureUploader) Option {
	return func(o *managerOptions) {
		o.uploader = u
	}
}
