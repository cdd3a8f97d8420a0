package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/spaghettifunk/posecreator/engine/assets/loaders"
	"github.com/spaghettifunk/posecreator/engine/core"
	"github.com/spaghettifunk/posecreator/engine/math"
	"github.com/spaghettifunk/posecreator/engine/resources"
)

type AssetInfo struct {
	Name     string
	Path     string
	Type     resources.ResourceType
	LastSeen time.Time
}

// AssetManager indexes the asset directory, keeps the index current while
// files come and go, and writes new animation assets into it.
type AssetManager struct {
	directory string
	assets    map[string]AssetInfo
	loaders   map[resources.ResourceType]Loader
	// animations created but not finalized yet
	pending map[uuid.UUID]*resources.AnimationResourceData
	saved   map[uuid.UUID]string

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[resources.ResourceType]Loader),
		pending:  make(map[uuid.UUID]*resources.AnimationResourceData),
		saved:    make(map[uuid.UUID]string),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}, nil
}

// Initialize creates the asset directory if needed, indexes what is already
// there and starts watching it.
func (am *AssetManager) Initialize(assetsDir string) error {
	dir, err := filepath.Abs(assetsDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	am.directory = dir

	go am.start()

	if err := am.addRecursive(dir); err != nil {
		return err
	}

	// Register loaders
	am.registerLoader(resources.ResourceTypeAnimation, &loaders.AnimationLoader{})
	am.registerLoader(resources.ResourceTypeRig, &loaders.RigLoader{})

	core.LogInfo("asset manager watching '%s' (%d assets)", dir, len(am.List(resources.ResourceTypeNone)))
	return nil
}

// Shutdown stops the watcher. Pending animations are dropped.
func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	for handle := range am.pending {
		core.LogWarn("animation %s was never finalized", handle)
	}
	am.pending = map[uuid.UUID]*resources.AnimationResourceData{}
	am.mutex.Unlock()

	close(am.done)
	if am.directory != "" {
		<-am.stopped
	} else {
		am.fsnotify.Close()
	}
	return nil
}

func (am *AssetManager) Directory() string {
	return am.directory
}

// AddRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	if am.isClosed {
		return errors.New("asset watcher already closed")
	}
	return am.watchRecursive(name, false)
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType resources.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// List returns the indexed assets of the given type, sorted by name.
// ResourceTypeNone lists everything.
func (am *AssetManager) List(assetType resources.ResourceType) []AssetInfo {
	am.mutex.RLock()
	defer am.mutex.RUnlock()

	out := make([]AssetInfo, 0, len(am.assets))
	for _, a := range am.assets {
		if assetType == resources.ResourceTypeNone || a.Type == assetType {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].Path < out[j].Path
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Load an asset using the appropriate loader
func (am *AssetManager) LoadAsset(name string, resourceType resources.ResourceType, params interface{}) (*resources.Resource, error) {
	if resourceType == resources.ResourceTypeNone {
		return nil, fmt.Errorf("unknown resource type")
	}
	path := filepath.Join(am.directory, name+resourceType.Extension())

	am.mutex.RLock()
	_, exists := am.assets[path]
	am.mutex.RUnlock()
	if !exists {
		// The watcher may not have caught up yet.
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %s", core.ErrUnknownAsset, path)
		}
		am.handleFileEvent(path)
	}

	loader, loaderExists := am.loaders[resourceType]
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %s", resourceType)
	}
	return loader.Load(path, resourceType, params)
}

// CreateAnimationAsset opens a new animation for the given skeleton. Tracks
// are kept in memory until FinalizeAsset.
func (am *AssetManager) CreateAnimationAsset(skeletonRef string) (uuid.UUID, error) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	if am.isClosed {
		return uuid.Nil, errors.New("asset manager is shut down")
	}
	handle := uuid.New()
	am.pending[handle] = &resources.AnimationResourceData{
		Version:  resources.AnimationFormatVersion,
		Name:     fmt.Sprintf("%s_%s", skeletonRef, strings.Split(handle.String(), "-")[0]),
		Skeleton: skeletonRef,
	}
	return handle, nil
}

func (am *AssetManager) animation(handle uuid.UUID) (*resources.AnimationResourceData, error) {
	a, ok := am.pending[handle]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownAsset, handle)
	}
	return a, nil
}

func (am *AssetManager) WriteBoneTrack(handle uuid.UUID, boneName string, positions []math.Vec3, rotations []math.Quaternion) error {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	a, err := am.animation(handle)
	if err != nil {
		return err
	}
	if len(positions) != len(rotations) {
		return fmt.Errorf("%w: %d positions and %d rotations for '%s'", core.ErrPoseSizeMismatch, len(positions), len(rotations), boneName)
	}
	if a.FrameCount != 0 && len(positions) != a.FrameCount {
		return fmt.Errorf("%w: track '%s' has %d frames, animation has %d", core.ErrPoseSizeMismatch, boneName, len(positions), a.FrameCount)
	}
	a.FrameCount = len(positions)

	track := resources.BoneTrackResource{
		Bone:      boneName,
		Scale:     [3]float32{1, 1, 1},
		Positions: make([][3]float32, len(positions)),
		Rotations: make([][4]float32, len(rotations)),
	}
	for i := range positions {
		p := positions[i]
		r := rotations[i]
		track.Positions[i] = [3]float32{p.X, p.Y, p.Z}
		track.Rotations[i] = [4]float32{r.X, r.Y, r.Z, r.W}
	}
	if existing, ok := a.Track(boneName); ok {
		track.Scale = existing.Scale
		*existing = track
		return nil
	}
	a.Tracks = append(a.Tracks, track)
	return nil
}

func (am *AssetManager) WriteBoneScale(handle uuid.UUID, boneName string, scale math.Vec3) error {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	a, err := am.animation(handle)
	if err != nil {
		return err
	}
	track, ok := a.Track(boneName)
	if !ok {
		return fmt.Errorf("%w: no track for '%s'", core.ErrUnknownBone, boneName)
	}
	track.Scale = [3]float32{scale.X, scale.Y, scale.Z}
	return nil
}

func (am *AssetManager) WriteFrameTimes(handle uuid.UUID, times []float32) error {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	a, err := am.animation(handle)
	if err != nil {
		return err
	}
	a.Times = append([]float32(nil), times...)
	return nil
}

// FinalizeAsset writes the animation to <dir>/<name>.anim.yaml and indexes it.
func (am *AssetManager) FinalizeAsset(handle uuid.UUID) error {
	am.mutex.Lock()
	a, err := am.animation(handle)
	if err != nil {
		am.mutex.Unlock()
		return err
	}
	delete(am.pending, handle)
	am.mutex.Unlock()

	if len(a.Times) == 0 && a.FrameCount > 0 {
		// Frames one second apart when the writer did not provide times.
		a.Times = make([]float32, a.FrameCount)
		for i := range a.Times {
			a.Times[i] = float32(i)
		}
	}

	path := filepath.Join(am.directory, a.Name+resources.ResourceTypeAnimation.Extension())
	if err := loaders.WriteAnimation(path, a); err != nil {
		return err
	}
	am.handleFileEvent(path)

	am.mutex.Lock()
	am.saved[handle] = path
	am.mutex.Unlock()

	core.LogInfo("animation '%s' written to %s", a.Name, path)
	return nil
}

// DiscardAsset drops an animation that was never finalized.
func (am *AssetManager) DiscardAsset(handle uuid.UUID) error {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	if _, err := am.animation(handle); err != nil {
		return err
	}
	delete(am.pending, handle)
	return nil
}

// AssetPath returns where a finalized animation was written.
func (am *AssetManager) AssetPath(handle uuid.UUID) (string, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()

	p, ok := am.saved[handle]
	return p, ok
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {

		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := am.watchRecursive(e.Name, false); err != nil {
						core.LogWarn("could not watch '%s': %s", e.Name, err)
					}
				}
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				am.handleFileEvent(e.Name)
			}
			// A renamed file shows up again as a create under its new name.
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				am.removeAsset(e.Name)
			}

		case e, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(e.Error())

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list
// and indexes the files found on the way.
func (am *AssetManager) watchRecursive(path string, unWatch bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if unWatch {
				return am.fsnotify.Remove(walkPath)
			}
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) {
	assetType := determineAssetType(path)
	if assetType == resources.ResourceTypeNone {
		return
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()

	am.assets[path] = AssetInfo{
		Name:     strings.TrimSuffix(filepath.Base(path), assetType.Extension()),
		Path:     path,
		Type:     assetType,
		LastSeen: time.Now(),
	}
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
}

func determineAssetType(path string) resources.ResourceType {
	base := filepath.Base(path)
	for _, t := range []resources.ResourceType{resources.ResourceTypeAnimation, resources.ResourceTypeRig} {
		if strings.HasSuffix(base, t.Extension()) && len(base) > len(t.Extension()) {
			return t
		}
	}
	return resources.ResourceTypeNone
}
