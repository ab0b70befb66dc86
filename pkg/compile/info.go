package compile

import (
	"net"
	"net/url"
)

// URL 以字符串形式序列化
type URL url.URL

func (u URL) String() string {
	v := (*url.URL)(&u)
	return v.String()
}

func (u URL) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *URL) UnmarshalText(data []byte) error {
	n, err := url.Parse(string(data))
	if err != nil {
		return err
	}
	*u = URL(*n)
	return nil
}

// Info 健康检查返回的构建和实例信息
type Info struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildTime string `json:"buildTime,omitempty"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Hostname  string `json:"hostname"`
	Endpoints []URL  `json:"endpoints,omitempty"`
}

// Current 当前进程的信息，httpAddr 为监听地址，如 ":8080"
func Current(httpAddr string) Info {
	info := Info{
		Name:      Name,
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        Os(),
		Hostname:  Hostname,
	}
	if _, port, err := net.SplitHostPort(httpAddr); err == nil && IpAddr != "" {
		info.Endpoints = append(info.Endpoints, URL{Scheme: "http", Host: net.JoinHostPort(IpAddr, port)})
	}
	return info
}
