package entities

// Context attribute names read from the host context object, in the order
// they are extracted.
const (
	AttrFunctionName       = "function_name"
	AttrFunctionVersion    = "function_version"
	AttrInvokedFunctionARN = "invoked_function_arn"
	AttrMemoryLimitInMB    = "memory_limit_in_mb"
	AttrAWSRequestID       = "aws_request_id"
	AttrLogGroupName       = "log_group_name"
	AttrLogStreamName      = "log_stream_name"
)

// MethodGetRemainingTimeInMillis is the zero-argument method on the host
// context object that reports the milliseconds left in the invocation.
const MethodGetRemainingTimeInMillis = "get_remaining_time_in_millis"

// ContextAttributes lists the seven attribute names in extraction order.
var ContextAttributes = []string{
	AttrFunctionName,
	AttrFunctionVersion,
	AttrInvokedFunctionARN,
	AttrMemoryLimitInMB,
	AttrAWSRequestID,
	AttrLogGroupName,
	AttrLogStreamName,
}

// ContextSnapshot is the per-invocation metadata captured from the host
// context object at construction time.
type ContextSnapshot struct {
	FunctionName       string `json:"function_name" yaml:"function_name"`
	FunctionVersion    string `json:"function_version" yaml:"function_version"`
	InvokedFunctionARN string `json:"invoked_function_arn" yaml:"invoked_function_arn"`
	MemoryLimitInMB    string `json:"memory_limit_in_mb" yaml:"memory_limit_in_mb"`
	AWSRequestID       string `json:"aws_request_id" yaml:"aws_request_id"`
	LogGroupName       string `json:"log_group_name" yaml:"log_group_name"`
	LogStreamName      string `json:"log_stream_name" yaml:"log_stream_name"`
}

// Field returns a pointer to the snapshot field for the named attribute, or
// nil for an unknown name.
func (s *ContextSnapshot) Field(attr string) *string {
	switch attr {
	case AttrFunctionName:
		return &s.FunctionName
	case AttrFunctionVersion:
		return &s.FunctionVersion
	case AttrInvokedFunctionARN:
		return &s.InvokedFunctionARN
	case AttrMemoryLimitInMB:
		return &s.MemoryLimitInMB
	case AttrAWSRequestID:
		return &s.AWSRequestID
	case AttrLogGroupName:
		return &s.LogGroupName
	case AttrLogStreamName:
		return &s.LogStreamName
	default:
		return nil
	}
}

// Attributes returns the snapshot as an attribute map keyed by the host
// attribute names.
func (s ContextSnapshot) Attributes() map[string]any {
	attrs := make(map[string]any, len(ContextAttributes))
	for _, name := range ContextAttributes {
		attrs[name] = *s.Field(name)
	}
	return attrs
}
