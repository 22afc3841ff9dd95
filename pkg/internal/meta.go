package pkg

const (
	AppName    = "HyperNet.Calling"
	AppVersion = "1.0.0"
)
