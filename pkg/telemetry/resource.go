package telemetry

import (
	"net"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// cpmRunIDKey tags every span a single cmd/cpm invocation exports with
// the run identifier Init generated (it is set on the TracerProvider's
// resource only; metrics do not carry it), so a backend that
// otherwise only groups by service.name can still separate two
// concurrent percolation runs against the same collector.
const cpmRunIDKey = attribute.Key("cpm.run_id")

// buildResource creates an OpenTelemetry Resource describing this
// percolation run: service identity, host.name set to the resolved
// host IP, and runID stamped as cpm.run_id so every span this process
// emits can be grouped back to one pipeline invocation.
func buildResource(cfg *Config, runID string) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		cpmRunIDKey.String(runID),
	}
	if ip := resolveHostIP(); ip != "" {
		attrs = append(attrs, semconv.HostName(ip))
	}
	for k, v := range cfg.ResourceAttrs {
		attrs = append(attrs, attribute.String(k, v))
	}

	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, attrs...),
	)
}

// resolveHostIP picks the first non-loopback address it can find,
// preferring IPv4 (see firstUsableIPv4), trying the hostname's resolved
// addresses before falling back to a scan of the machine's up interfaces.
func resolveHostIP() string {
	if hostname, err := os.Hostname(); err == nil {
		if addrs, err := net.LookupIP(hostname); err == nil {
			if ip := firstUsableIPv4(addrs); ip != "" {
				return ip
			}
		}
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return ""
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		var ips []net.IP
		for _, addr := range addrs {
			switch v := addr.(type) {
			case *net.IPNet:
				ips = append(ips, v.IP)
			case *net.IPAddr:
				ips = append(ips, v.IP)
			}
		}
		if ip := firstUsableIPv4(ips); ip != "" {
			return ip
		}
	}
	return ""
}

// firstUsableIPv4 returns the first non-loopback address in addrs,
// preferring an IPv4 form when one is available.
func firstUsableIPv4(addrs []net.IP) string {
	for _, addr := range addrs {
		if addr.IsLoopback() {
			continue
		}
		if ipv4 := addr.To4(); ipv4 != nil {
			return ipv4.String()
		}
	}
	for _, addr := range addrs {
		if !addr.IsLoopback() {
			return addr.String()
		}
	}
	return ""
}
