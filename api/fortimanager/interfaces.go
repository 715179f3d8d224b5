package fortimanager

import "context"

// Dispatcher is the contract resource modules build on: they assemble
// (method, params) and read defaults such as the ADOM from Config.
//
// Example usage with testify/mock:
//
//	type MockDispatcher struct {
//	    mock.Mock
//	}
//
//	func (m *MockDispatcher) Dispatch(ctx context.Context, method fortimanager.Method, params fortimanager.Params) (*fortimanager.Result, error) {
//	    args := m.Called(ctx, method, params)
//	    if args.Get(0) == nil {
//	        return nil, args.Error(1)
//	    }
//	    return args.Get(0).(*fortimanager.Result), args.Error(1)
//	}
type Dispatcher interface {
	// Dispatch sends one request and returns the first result.
	Dispatch(ctx context.Context, method Method, params Params) (*Result, error)

	// Config returns the immutable client configuration.
	Config() Config
}
