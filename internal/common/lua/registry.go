// Package lua: 서버 측 원자 연산에 쓰는 Lua 스크립트를 이름으로 등록하고 실행한다.
package lua

import (
	"context"
	"errors"
	"fmt"

	"github.com/valkey-io/valkey-go"
	"golang.org/x/sync/errgroup"
)

// Script 는 Registry 에 등록되는 Lua 스크립트 정의다.
type Script struct {
	Name     string
	Source   string
	ReadOnly bool
}

type entry struct {
	meta   Script
	script *valkey.Lua
}

// Registry 는 Lua 스크립트 실행을 단일 경로로 관리한다.
// valkey.Lua 는 EVALSHA 실패 시 EVAL 로 재시도한다.
type Registry struct {
	entries map[string]entry
}

// NewRegistry 는 스크립트 목록으로 Registry 를 생성한다.
func NewRegistry(scripts []Script) *Registry {
	registry := &Registry{entries: make(map[string]entry, len(scripts))}
	for _, s := range scripts {
		lua := valkey.NewLuaScript(s.Source)
		if s.ReadOnly {
			lua = valkey.NewLuaScriptReadOnly(s.Source)
		}
		registry.entries[s.Name] = entry{meta: s, script: lua}
	}
	return registry
}

// Exec 는 등록된 스크립트를 실행한다.
// Redis 오류는 ValkeyResult.Error()로 확인한다.
func (r *Registry) Exec(ctx context.Context, client valkey.Client, name string, keys []string, args []string) (valkey.ValkeyResult, error) {
	if r == nil {
		return valkey.ValkeyResult{}, errors.New("lua registry is nil")
	}
	if client == nil {
		return valkey.ValkeyResult{}, errors.New("valkey client is nil")
	}
	e, ok := r.entries[name]
	if !ok {
		return valkey.ValkeyResult{}, fmt.Errorf("unknown lua script: %s", name)
	}
	return e.script.Exec(ctx, client, keys, args), nil
}

// Preload 는 등록된 Lua 스크립트를 SCRIPT LOAD 로 모든 노드에 병렬 적재한다.
func (r *Registry) Preload(ctx context.Context, client valkey.Client) error {
	if r == nil {
		return errors.New("lua registry is nil")
	}
	if client == nil {
		return errors.New("valkey client is nil")
	}

	nodes := client.Nodes()
	if len(nodes) == 0 {
		nodes = map[string]valkey.Client{"default": client}
	}

	g, gctx := errgroup.WithContext(ctx)
	for name, e := range r.entries {
		for _, node := range nodes {
			g.Go(func() error {
				cmd := node.B().ScriptLoad().Script(e.meta.Source).Build()
				if err := node.Do(gctx, cmd).Error(); err != nil {
					return fmt.Errorf("lua preload failed (%s): %w", name, err)
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("lua preload: %w", err)
	}
	return nil
}

// Names: 등록된 스크립트 이름 목록
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	return names
}
