package extension

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Extension 一个需要启动和关闭的组件
type Extension interface {
	Name() string
	Load(ctx context.Context) error // 启动失败返回 error
	Exit(ctx context.Context)       // 释放资源，不返回 error
}

// Func 用闭包实现 Extension
type Func struct {
	ID     string
	OnLoad func(ctx context.Context) error
	OnExit func(ctx context.Context)
}

func (f Func) Name() string { return f.ID }

func (f Func) Load(ctx context.Context) error {
	if f.OnLoad == nil {
		return nil
	}
	return f.OnLoad(ctx)
}

func (f Func) Exit(ctx context.Context) {
	if f.OnExit != nil {
		f.OnExit(ctx)
	}
}

// Manager 按注册顺序加载，按相反顺序退出
type Manager struct {
	mu         sync.Mutex
	registered []Extension
	loaded     []Extension
}

func NewManager() *Manager {
	return &Manager{}
}

// Register 注册扩展，nil 被忽略
func (m *Manager) Register(exts ...Extension) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ext := range exts {
		if ext == nil {
			log.Warn().Msg("attempted to register a nil extension")
			continue
		}
		m.registered = append(m.registered, ext)
		log.Trace().Str("extension", ext.Name()).Msg("extension registered")
	}
}

// LoadAll 依次加载，任何一个失败时把本次已加载的反向退出
func (m *Manager) LoadAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var loaded []Extension
	for _, ext := range m.registered {
		if err := ext.Load(ctx); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("extension", ext.Name()).Msg("failed to load extension, rolling back")
			exitReverse(ctx, loaded)
			return fmt.Errorf("load extension %s: %w", ext.Name(), err)
		}
		loaded = append(loaded, ext)
		log.Ctx(ctx).Debug().Str("extension", ext.Name()).Msg("extension loaded")
	}
	m.loaded = loaded
	return nil
}

// ExitAll 反向退出所有已加载的扩展
func (m *Manager) ExitAll(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	exitReverse(ctx, m.loaded)
	m.loaded = nil
}

// Loaded 已加载扩展的名字，按加载顺序
func (m *Manager) Loaded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.loaded))
	for _, ext := range m.loaded {
		names = append(names, ext.Name())
	}
	return names
}

func exitReverse(ctx context.Context, exts []Extension) {
	for i := len(exts) - 1; i >= 0; i-- {
		exts[i].Exit(ctx)
		log.Ctx(ctx).Debug().Str("extension", exts[i].Name()).Msg("extension exited")
	}
}
