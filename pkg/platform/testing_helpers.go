package platform

// noopBridge is a NativeBridge that accepts all calls without side effects.
type noopBridge struct{}

func (noopBridge) InvokeMethod(channel, method string, args []byte) ([]byte, error) {
	return DefaultCodec.Encode(nil)
}
func (noopBridge) StartEventStream(string) error { return nil }
func (noopBridge) StopEventStream(string) error  { return nil }

// SetupTestBridge installs bridge, or a no-op bridge when bridge is nil, and
// registers ResetForTest with cleanup, which should be testing.T.Cleanup or
// equivalent.
//
//	platform.SetupTestBridge(t.Cleanup, nil)
func SetupTestBridge(cleanup func(func()), bridge NativeBridge) {
	if bridge == nil {
		bridge = noopBridge{}
	}
	SetNativeBridge(bridge)
	cleanup(ResetForTest)
}
