package bootstrap

// Capabilities is the runtime capability snapshot, computed once per
// process during bootstrap and immutable afterwards.
type Capabilities struct {
	DynamicLoading  bool `json:"dynamic_loading"`
	RemoteResources bool `json:"remote_resources"`
	RemoteStarted   bool `json:"remote_started"`
}

// Mode names the deployment configuration the snapshot describes.
func (c Capabilities) Mode() string {
	switch {
	case !c.DynamicLoading:
		return "aot"
	case !c.RemoteResources:
		return "dynamic"
	default:
		return "remote"
	}
}
