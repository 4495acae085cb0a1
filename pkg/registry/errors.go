package registry

import "errors"

// ErrAuthRequired indicates the registry answered 401. For private gcr.io
// and generic V2 hosts this is expected when no credentials are configured,
// and callers treat it as "no tags available" rather than a failure.
var ErrAuthRequired = errors.New("registry requires authentication")
