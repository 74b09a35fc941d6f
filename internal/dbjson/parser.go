package dbjson

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ParseSkeletonFile parses a DragonBones `_ske.json` file.
//
// Parameters:
//   - path: Path to the skeleton file, e.g., "assets/hero/hero_ske.json"
//
// Returns:
//   - *SkeletonJSON: The parsed skeleton definition
//   - error: Read or parsing error, or nil if successful
func ParseSkeletonFile(path string) (*SkeletonJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read skeleton file '%s': %w", path, err)
	}
	return ParseSkeleton(data)
}

// ParseSkeleton parses skeleton definition data already held in memory.
func ParseSkeleton(data []byte) (*SkeletonJSON, error) {
	var ske SkeletonJSON
	if err := json.Unmarshal(data, &ske); err != nil {
		return nil, fmt.Errorf("failed to parse skeleton JSON: %w", err)
	}
	if len(ske.Armatures) == 0 {
		return nil, fmt.Errorf("skeleton definition contains no armature")
	}
	return &ske, nil
}

// ParseProjectDir parses a DragonBones project folder. The folder must be
// named after the entity and contain `<entity>_ske.json`; this mirrors the
// standard DragonBones export layout where `<entity>_tex.json` and
// `<entity>_tex.png` sit next to the skeleton file.
func ParseProjectDir(dir string) (*SkeletonJSON, error) {
	entity := filepath.Base(dir)
	return ParseSkeletonFile(filepath.Join(dir, entity+"_ske.json"))
}

// Armature returns the armature used for playback (the first one).
// ParseSkeleton guarantees at least one exists.
func (s *SkeletonJSON) Armature() *Armature {
	return &s.Armatures[0]
}

// FindAnimation looks up a clip by name. Returns nil when no clip with that
// name exists.
func (a *Armature) FindAnimation(name string) *Animation {
	for i := range a.Animations {
		if a.Animations[i].Name == name {
			return &a.Animations[i]
		}
	}
	return nil
}
