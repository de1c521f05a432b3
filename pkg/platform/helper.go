package platform

import (
	"context"
	"errors"
	"time"

	"github.com/go-drift/permissions-helper/pkg/permissions"
)

// HelperChannelName is the method channel the application layer calls.
const HelperChannelName = "permissions_helper"

const missingPermissionArg = "'permission' argument missing or is the wrong type."

// Helper serves a permissions.Service on the permissions_helper method
// channel.
//
// Methods hasPermission, getPermissionStatus and requestPermission take
// {"permission": string}; openSettings takes no arguments. Statuses are
// answered as their ordinal. Argument and name errors are answered with a
// ChannelError carrying code PERM_ERROR.
type Helper struct {
	service *permissions.Service
	channel *MethodChannel
	timeout time.Duration
}

// HelperOption configures a Helper.
type HelperOption func(*Helper)

// WithRequestTimeout bounds how long requestPermission waits for the OS to
// answer. Zero, the default, waits indefinitely.
func WithRequestTimeout(d time.Duration) HelperOption {
	return func(h *Helper) {
		h.timeout = d
	}
}

// NewHelper registers the permissions_helper channel and serves svc on it.
func NewHelper(svc *permissions.Service, opts ...HelperOption) *Helper {
	h := &Helper{
		service: svc,
		channel: NewMethodChannel(HelperChannelName),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.channel.SetHandler(h.HandleMethod)
	return h
}

// HandleMethod dispatches one method call. requestPermission blocks until
// the request is answered.
func (h *Helper) HandleMethod(method string, args any) (any, error) {
	switch method {
	case "hasPermission":
		name, err := permissionArg(args)
		if err != nil {
			return nil, err
		}
		has, err := h.service.HasPermission(name)
		if err != nil {
			return nil, channelError(err)
		}
		return has, nil

	case "getPermissionStatus":
		name, err := permissionArg(args)
		if err != nil {
			return nil, err
		}
		status, err := h.service.GetPermissionStatus(name)
		if err != nil {
			return nil, channelError(err)
		}
		return int(status), nil

	case "requestPermission":
		name, err := permissionArg(args)
		if err != nil {
			return nil, err
		}
		ctx := context.Background()
		if h.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, h.timeout)
			defer cancel()
		}
		status, err := h.service.Request(ctx, name)
		if err != nil {
			return nil, channelError(err)
		}
		return int(status), nil

	case "openSettings":
		return h.service.OpenSettings(), nil
	}
	return nil, ErrMethodNotFound
}

func permissionArg(args any) (string, error) {
	name, ok := parseMap(args)["permission"].(string)
	if !ok {
		return "", NewChannelError(permissions.ErrorCode, missingPermissionArg)
	}
	return name, nil
}

// channelError converts an unknown-name error to its wire form. Other
// errors pass through unchanged.
func channelError(err error) error {
	var unknown *permissions.UnknownNameError
	if errors.As(err, &unknown) {
		return NewChannelError(unknown.Code(), unknown.Error())
	}
	return err
}
