package compile

import (
	"fmt"
	"net"
	"os"
	"runtime"

	"github.com/rs/zerolog/log"
)

// 通过 -ldflags "-X github.com/play/updown/pkg/compile.Version=..." 注入
var (
	Name      = "updown"
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""

	GoVersion = runtime.Version()
	GoOs      = runtime.GOOS
	GoArch    = runtime.GOARCH
	Hostname  = ""
	IpAddr    = "" // 内网IP地址
)

func init() {
	Hostname, _ = os.Hostname()
	IpAddr = privateIPv4()
}

// privateIPv4 第一个内网 IPv4 地址
func privateIPv4() string {
	addrs, _ := net.InterfaceAddrs()
	for _, address := range addrs {
		if ipnet, ok := address.(*net.IPNet); ok && ipnet.IP.IsPrivate() && ipnet.IP.To4() != nil {
			return ipnet.IP.String()
		}
	}
	return ""
}

func Os() string {
	return fmt.Sprintf("%s/%s", GoOs, GoArch)
}

func Log() {
	log.Info().Str("name", Name).Str("version", Version).Str("go_version", GoVersion).Str("os", Os()).Str("commit", GitCommit).Str("build_time", BuildTime).Msg("build info")
}
