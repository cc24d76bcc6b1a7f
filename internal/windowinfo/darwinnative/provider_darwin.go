//go:build darwin && cgo

// Package darwinnative implements windowinfo.Provider against Cocoa and
// ApplicationServices via cgo, grounded on the ChatClaw pkg/winsnap
// winsnap_darwin.go cgo/LDFLAGS pattern.
package darwinnative

/*
#cgo darwin LDFLAGS: -framework Cocoa -framework ApplicationServices -framework CoreGraphics

#import <Cocoa/Cocoa.h>
#import <ApplicationServices/ApplicationServices.h>

typedef struct {
	char title[1024];
	char appName[512];
	int  left, top, width, height;
	int  ok;
} FrontWindow;

static FrontWindow getFrontWindow() {
	FrontWindow result = {0};
	NSRunningApplication *app = [[NSWorkspace sharedWorkspace] frontmostApplication];
	if (app == nil) {
		return result;
	}
	strncpy(result.appName, [[app localizedName] UTF8String] ?: "", sizeof(result.appName)-1);

	pid_t pid = [app processIdentifier];
	AXUIElementRef appRef = AXUIElementCreateApplication(pid);
	if (appRef == NULL) {
		return result;
	}

	AXUIElementRef windowRef = NULL;
	AXError err = AXUIElementCopyAttributeValue(appRef, kAXFocusedWindowAttribute, (CFTypeRef *)&windowRef);
	if (err != kAXErrorSuccess || windowRef == NULL) {
		CFRelease(appRef);
		return result;
	}

	CFStringRef titleRef = NULL;
	if (AXUIElementCopyAttributeValue(windowRef, kAXTitleAttribute, (CFTypeRef *)&titleRef) == kAXErrorSuccess && titleRef != NULL) {
		CFStringGetCString(titleRef, result.title, sizeof(result.title), kCFStringEncodingUTF8);
		CFRelease(titleRef);
	}

	AXValueRef posRef = NULL, sizeRef = NULL;
	CGPoint pos = {0, 0};
	CGSize size = {0, 0};
	if (AXUIElementCopyAttributeValue(windowRef, kAXPositionAttribute, (CFTypeRef *)&posRef) == kAXErrorSuccess && posRef != NULL) {
		AXValueGetValue(posRef, kAXValueCGPointType, &pos);
		CFRelease(posRef);
	}
	if (AXUIElementCopyAttributeValue(windowRef, kAXSizeAttribute, (CFTypeRef *)&sizeRef) == kAXErrorSuccess && sizeRef != NULL) {
		AXValueGetValue(sizeRef, kAXValueCGSizeType, &size);
		CFRelease(sizeRef);
	}

	result.left = (int)pos.x;
	result.top = (int)pos.y;
	result.width = (int)size.width;
	result.height = (int)size.height;
	result.ok = 1;

	CFRelease(windowRef);
	CFRelease(appRef);
	return result;
}

typedef struct {
	int left, top, width, height;
} ScreenBox;

static int getScreens(ScreenBox *out, int maxCount) {
	NSArray<NSScreen *> *screens = [NSScreen screens];
	int n = (int)[screens count];
	if (n > maxCount) {
		n = maxCount;
	}
	for (int i = 0; i < n; i++) {
		NSRect frame = [screens[i] frame];
		out[i].left = (int)frame.origin.x;
		out[i].top = (int)frame.origin.y;
		out[i].width = (int)frame.size.width;
		out[i].height = (int)frame.size.height;
	}
	return n;
}
*/
import "C"

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/clepsy/deskagent/internal/events"
	"github.com/clepsy/deskagent/internal/windowinfo"
)

const maxScreens = 16

type Provider struct{}

func New() *Provider { return &Provider{} }

func (p *Provider) ActiveWindow(ctx context.Context, retries int, cooldown time.Duration) (*events.WindowInfo, []events.Bbox, error) {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			case <-time.After(cooldown):
			}
		}

		fw := C.getFrontWindow()
		if fw.ok == 1 {
			var cScreens [maxScreens]C.ScreenBox
			n := int(C.getScreens(&cScreens[0], maxScreens))
			monitors := make([]events.Bbox, 0, n)
			for i := 0; i < n; i++ {
				s := cScreens[i]
				monitors = append(monitors, events.Bbox{
					Left: int(s.left), Top: int(s.top), Width: int(s.width), Height: int(s.height),
				})
			}

			wi := &events.WindowInfo{
				Title:   C.GoString(&fw.title[0]),
				AppName: C.GoString(&fw.appName[0]),
				Bbox: events.Bbox{
					Left:   int(fw.left),
					Top:    int(fw.top),
					Width:  int(fw.width),
					Height: int(fw.height),
				},
			}
			return wi, monitors, nil
		}
		lastErr = errors.New("darwinnative: no focused window")
	}
	return nil, nil, errors.Wrap(lastErr, "darwinnative: active window query failed")
}

func (p *Provider) Close() error { return nil }

var _ windowinfo.Provider = (*Provider)(nil)
