// Package ui is the terminal interface: library views, virtualized track
// lists, the player bar, lyrics, context menus and toasts.
package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"tunedeck/internal/core"
	"tunedeck/internal/i18n"
	"tunedeck/internal/lyrics"
	"tunedeck/internal/player"
	"tunedeck/internal/tracklist"
	"tunedeck/pkg/spotifyuri"
)

// View identifies a screen.
type View int

const (
	HomeView View = iota
	PlaylistsView
	AlbumsView
	ShowsView
	ArtistsView
	TracksView
	NowPlayingView
	DevicesView
	HistoryView
	PreferencesView
)

// tabOrder is the cycle of the tab key.
var tabOrder = []View{HomeView, PlaylistsView, AlbumsView, ShowsView, ArtistsView}

const (
	headerHeight = 2
	playerHeight = 4
	footerHeight = 1
	maxPages     = 20
)

type LyricsSource interface {
	ForItem(ctx context.Context, item core.Item) (*lyrics.Lyrics, error)
}

type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]core.HistoryEntry, error)
}

// Deps are the services the interface drives.
type Deps struct {
	Controller *player.Controller
	Client     core.SpotifyClient
	State      *core.StateStore
	Library    core.LibraryIndex
	History    HistoryReader
	Lyrics     LyricsSource
	Localizer  *i18n.Localizer
	Metrics    core.Metrics
	CopyText   func(string) error
	// OnLanguage persists a language picked in preferences.
	OnLanguage func(string) error
	Config     core.AppConfig
	Logger     *zap.Logger
}

// Model is the bubbletea model of the whole interface.
type Model struct {
	ctx    context.Context
	deps   Deps
	loc    *i18n.Localizer
	keys   keyMap
	help   help.Model
	logger *zap.Logger

	view   View
	back   []View
	width  int
	height int

	state       core.PlaybackState
	stateCh     <-chan core.PlaybackState
	cancelState func()

	lists     map[View]*list.Model
	loading   map[View]bool
	playlists []core.Playlist
	tracks    *trackView

	progress progress.Model
	spinner  spinner.Model
	// opening is set while a track page is being fetched.
	opening bool

	showLyrics bool
	lyrics     *lyrics.Lyrics
	lyricsFor  string
	lyricsErr  error
	theme      lyrics.Theme

	menu     *menuState
	menuExec core.MenuExecutor
	toasts   toastQueue
}

func NewModel(ctx context.Context, deps Deps) *Model {
	if deps.Localizer == nil {
		deps.Localizer = i18n.NewLocalizer(deps.Config.Language)
	}
	if deps.Metrics == nil {
		deps.Metrics = core.NopMetrics{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Config.ToastSecs <= 0 {
		deps.Config.ToastSecs = core.DefaultToastSecs
	}
	if deps.Config.OverscanRows <= 0 {
		deps.Config.OverscanRows = core.DefaultOverscanRows
	}

	m := &Model{
		ctx:      ctx,
		deps:     deps,
		loc:      deps.Localizer,
		keys:     newKeyMap(),
		help:     help.New(),
		logger:   deps.Logger,
		view:     HomeView,
		lists:    make(map[View]*list.Model),
		loading:  make(map[View]bool),
		progress: progress.New(progress.WithGradient(colorAccent, colorCurrent), progress.WithoutPercentage()),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(newStyle(colorAccent))),
		theme:    lyrics.DefaultTheme(),
		menuExec: core.MenuExecutor{
			Client:   deps.Client,
			Library:  deps.Library,
			CopyText: deps.CopyText,
		},
	}
	if deps.State != nil {
		m.state = deps.State.Snapshot()
	}
	m.setList(HomeView, m.homeItems())
	m.setList(PreferencesView, m.languageItems())
	return m
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.loadCollection(PlaylistsView)}
	if m.deps.State != nil {
		m.stateCh, m.cancelState = m.deps.State.Subscribe()
		cmds = append(cmds, m.waitForState())
	}
	return tea.Batch(cmds...)
}

// Close stops the state subscription.
func (m *Model) Close() {
	if m.cancelState != nil {
		m.cancelState()
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, m.ensureVisible()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case stateMsg:
		previous := m.state.CurrentID()
		m.state = core.PlaybackState(msg)
		var cmds []tea.Cmd
		cmds = append(cmds, m.waitForState())
		if m.showLyrics && m.state.CurrentID() != previous {
			cmds = append(cmds, m.fetchLyrics())
		}
		return m, tea.Batch(cmds...)

	case stateClosedMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case collectionMsg:
		delete(m.loading, msg.view)
		if msg.err != nil {
			m.logger.Warn("Failed to load collection", zap.Int("view", int(msg.view)), zap.Error(msg.err))
			return m, m.toast(core.Toast{Variant: core.ToastError, Key: "error.load_failed", Args: []any{m.viewTitle(msg.view)}})
		}
		if msg.playlists != nil {
			m.playlists = msg.playlists
		}
		m.setList(msg.view, msg.items)
		return m, nil

	case pageMsg:
		m.opening = false
		if msg.err != nil {
			m.logger.Warn("Failed to open page", zap.Error(msg.err))
			return m, m.toast(core.Toast{Variant: core.ToastError, Key: "error.load_failed", Args: []any{""}})
		}
		m.tracks = newTrackView(msg.page, msg.list, m.contentHeight()-trackHeaderHeight)
		m.navigate(TracksView)
		return m, m.ensureVisible()

	case rowsLoadedMsg:
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.logger.Warn("Failed to load rows", zap.Error(msg.err))
			return m, m.toast(core.Toast{Variant: core.ToastError, Key: "error.generic"})
		}
		return m, nil

	case outcomeMsg:
		if msg.Err != nil {
			m.logger.Debug("Playback action failed", zap.String("action", string(msg.Action)), zap.Error(msg.Err))
		}
		if msg.Toast.Key != "" {
			return m, m.toast(msg.Toast)
		}
		return m, nil

	case toastMsg:
		return m, m.toast(core.Toast(msg))

	case toastExpiredMsg:
		m.toasts.remove(msg.id)
		return m, nil

	case lyricsMsg:
		if msg.itemID == m.state.CurrentID() {
			m.lyrics, m.lyricsErr, m.lyricsFor = msg.lyrics, msg.err, msg.itemID
		}
		return m, nil

	case menuDoneMsg:
		return m, m.menuDone(msg)

	case deviceSelectedMsg:
		if msg.err != nil {
			return m, m.toast(core.Toast{Variant: core.ToastError, Key: "toast.device_not_found"})
		}
		return m, m.toast(core.Toast{Variant: core.ToastSuccess, Key: "toast.device_selected", Args: []any{msg.device.Name}})
	}

	return m.updateList(msg)
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width
	m.progress.Width = max(width-24, 10)
	for _, l := range m.lists {
		l.SetSize(width, m.contentHeight())
	}
	if m.tracks != nil {
		m.tracks.setHeight(m.contentHeight() - trackHeaderHeight)
	}
}

func (m *Model) contentHeight() int {
	return max(m.height-headerHeight-playerHeight-footerHeight, 1)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) && (m.menu == nil || msg.String() == "ctrl+c") {
		m.Close()
		return m, tea.Quit
	}
	if m.menu != nil {
		return m, m.handleMenuKey(msg)
	}
	if m.filtering() {
		return m.updateList(msg)
	}

	switch {
	case key.Matches(msg, m.keys.playPause):
		return m, m.outcome(m.deps.Controller.TogglePlay)
	case key.Matches(msg, m.keys.next):
		return m, m.outcome(m.deps.Controller.Next)
	case key.Matches(msg, m.keys.previous):
		return m, m.outcome(m.deps.Controller.Previous)
	case key.Matches(msg, m.keys.seekBack):
		return m, m.seekBy(-player.SeekStep)
	case key.Matches(msg, m.keys.seekFwd):
		return m, m.seekBy(player.SeekStep)
	case key.Matches(msg, m.keys.volumeUp):
		return m, m.volumeBy(player.VolumeStep)
	case key.Matches(msg, m.keys.volumeDown):
		return m, m.volumeBy(-player.VolumeStep)
	case key.Matches(msg, m.keys.shuffle):
		shuffle := !m.state.Shuffle
		return m, m.remoteAction(func(ctx context.Context, r *player.RemoteBackend) error {
			return r.SetShuffle(ctx, shuffle)
		})
	case key.Matches(msg, m.keys.repeat):
		return m, m.remoteAction(func(ctx context.Context, r *player.RemoteBackend) error {
			return r.CycleRepeat(ctx)
		})
	case key.Matches(msg, m.keys.lyrics):
		m.showLyrics = !m.showLyrics
		if m.showLyrics && m.lyricsFor != m.state.CurrentID() {
			return m, m.fetchLyrics()
		}
		return m, nil
	case key.Matches(msg, m.keys.fullScreen):
		if m.view == NowPlayingView {
			m.goBack()
			return m, nil
		}
		m.navigate(NowPlayingView)
		return m, nil
	case key.Matches(msg, m.keys.tab):
		return m, m.nextSection()
	case key.Matches(msg, m.keys.devices):
		m.navigate(DevicesView)
		return m, m.loadCollection(DevicesView)
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.back):
		if m.showLyrics {
			m.showLyrics = false
			return m, nil
		}
		m.goBack()
		return m, nil
	}

	if m.view == TracksView && m.tracks != nil {
		return m, m.handleTracksKey(msg)
	}
	if key.Matches(msg, m.keys.enter) {
		return m, m.selectListItem()
	}
	return m.updateList(msg)
}

func (m *Model) handleTracksKey(msg tea.KeyMsg) tea.Cmd {
	t := m.tracks
	switch {
	case key.Matches(msg, m.keys.up):
		t.move(-1)
	case key.Matches(msg, m.keys.down):
		t.move(1)
	case key.Matches(msg, m.keys.pageUp):
		t.move(-t.height)
	case key.Matches(msg, m.keys.pageDown):
		t.move(t.height)
	case key.Matches(msg, m.keys.enter):
		return m.playRow()
	case key.Matches(msg, m.keys.playPage):
		return m.playPage()
	case key.Matches(msg, m.keys.menu):
		row, ok := t.selected()
		if !ok || !row.Loaded() {
			return nil
		}
		m.openMenu(row, 4, headerHeight+trackHeaderHeight+t.cursor-t.offset)
		return nil
	case key.Matches(msg, m.keys.save):
		return m.toggleSave()
	default:
		return nil
	}
	return m.ensureVisible()
}

// filtering reports whether the active list is taking text input.
func (m *Model) filtering() bool {
	l, ok := m.lists[m.view]
	return ok && l.FilterState() == list.Filtering
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	l, ok := m.lists[m.view]
	if !ok {
		return m, nil
	}
	updated, cmd := l.Update(msg)
	*l = updated
	return m, cmd
}

func (m *Model) navigate(view View) {
	if view == m.view {
		return
	}
	m.back = append(m.back, m.view)
	m.view = view
}

func (m *Model) goBack() {
	if len(m.back) == 0 {
		m.view = HomeView
		return
	}
	m.view = m.back[len(m.back)-1]
	m.back = m.back[:len(m.back)-1]
}

func (m *Model) nextSection() tea.Cmd {
	next := tabOrder[0]
	for i, v := range tabOrder {
		if v == m.view {
			next = tabOrder[(i+1)%len(tabOrder)]
			break
		}
	}
	m.back = nil
	m.view = next
	return m.loadCollection(next)
}

func (m *Model) selectListItem() tea.Cmd {
	l, ok := m.lists[m.view]
	if !ok || l.SelectedItem() == nil {
		return nil
	}
	switch item := l.SelectedItem().(type) {
	case sectionItem:
		if item.view == TracksView {
			return m.openPage(core.PageTypeCollection, "", m.loc.T("ui.liked_songs"))
		}
		m.navigate(item.view)
		return m.loadCollection(item.view)
	case playlistItem:
		return m.openPage(core.PageTypePlaylist, item.playlist.ID, item.playlist.Name)
	case albumItem:
		return m.openPage(core.PageTypeAlbum, item.album.ID, item.album.Name)
	case showItem:
		return m.openPage(core.PageTypeShow, item.show.ID, item.show.Name)
	case artistItem:
		return m.openPage(core.PageTypeArtist, item.artist.ID, item.artist.Name)
	case deviceItem:
		return m.selectDevice(item.device)
	case historyItem:
		if item.entry.URI == "" {
			return nil
		}
		return m.outcome(func(ctx context.Context) player.Outcome {
			return m.deps.Controller.HandlePlayButton(ctx, player.PlayButtonInput{URI: item.entry.URI, IsSingle: true})
		})
	case languageItem:
		return m.setLanguage(item.code)
	}
	return nil
}

func (m *Model) setLanguage(code string) tea.Cmd {
	m.loc = i18n.NewLocalizer(code)
	m.setList(HomeView, m.homeItems())
	if m.deps.OnLanguage != nil {
		if err := m.deps.OnLanguage(code); err != nil {
			m.logger.Warn("Failed to save language", zap.String("language", code), zap.Error(err))
		}
	}
	return m.toast(core.Toast{Variant: core.ToastSuccess, Key: "toast.language_changed"})
}

func (m *Model) homeItems() []list.Item {
	return []list.Item{
		sectionItem{title: m.loc.T("ui.liked_songs"), view: TracksView},
		sectionItem{title: m.loc.T("ui.playlists"), view: PlaylistsView},
		sectionItem{title: m.loc.T("ui.albums"), view: AlbumsView},
		sectionItem{title: m.loc.T("ui.shows"), view: ShowsView},
		sectionItem{title: m.loc.T("ui.artists"), view: ArtistsView},
		sectionItem{title: m.loc.T("ui.history"), view: HistoryView},
		sectionItem{title: m.loc.T("ui.devices"), view: DevicesView},
		sectionItem{title: m.loc.T("ui.preferences"), view: PreferencesView},
	}
}

func (m *Model) languageItems() []list.Item {
	var items []list.Item
	for _, code := range i18n.GetSupportedLanguages() {
		items = append(items, languageItem{code: code, name: languageNames[code]})
	}
	return items
}

func (m *Model) setList(view View, items []list.Item) {
	if l, ok := m.lists[view]; ok {
		l.SetItems(items)
		l.Title = m.viewTitle(view)
		return
	}
	delegate := list.NewDefaultDelegate()
	if view == HomeView {
		delegate.ShowDescription = false
	}
	l := list.New(items, delegate, m.width, m.contentHeight())
	l.Title = m.viewTitle(view)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)
	m.lists[view] = &l
}

func (m *Model) viewTitle(view View) string {
	switch view {
	case HomeView:
		return m.loc.T("ui.home")
	case PlaylistsView:
		return m.loc.T("ui.playlists")
	case AlbumsView:
		return m.loc.T("ui.albums")
	case ShowsView:
		return m.loc.T("ui.shows")
	case ArtistsView:
		return m.loc.T("ui.artists")
	case NowPlayingView:
		return m.loc.T("ui.now_playing")
	case DevicesView:
		return m.loc.T("ui.devices")
	case HistoryView:
		return m.loc.T("ui.history")
	case PreferencesView:
		return m.loc.T("ui.preferences")
	case TracksView:
		if m.tracks != nil {
			return m.tracks.page.Name
		}
	}
	return ""
}

// busy reports whether something is loading in the background.
func (m *Model) busy() bool {
	return m.opening || len(m.loading) > 0
}

// user returns the logged in user, if any.
func (m *Model) user() *core.User {
	if m.deps.Controller == nil {
		return nil
	}
	return m.deps.Controller.User()
}

func (m *Model) waitForState() tea.Cmd {
	ch := m.stateCh
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		state, ok := <-ch
		if !ok {
			return stateClosedMsg{}
		}
		return stateMsg(state)
	}
}

func (m *Model) toast(t core.Toast) tea.Cmd {
	id := m.toasts.push(t)
	return tea.Tick(time.Duration(m.deps.Config.ToastSecs)*time.Second, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (m *Model) outcome(fn func(context.Context) player.Outcome) tea.Cmd {
	if m.deps.Controller == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return outcomeMsg(fn(ctx))
	}
}

func (m *Model) seekBy(delta time.Duration) tea.Cmd {
	controller := m.deps.Controller
	return m.outcome(func(ctx context.Context) player.Outcome {
		controller.SetSliderBusy(true)
		defer controller.SetSliderBusy(false)
		return controller.SeekBy(ctx, delta)
	})
}

func (m *Model) seekTo(position time.Duration) tea.Cmd {
	controller := m.deps.Controller
	return m.outcome(func(ctx context.Context) player.Outcome {
		controller.SetSliderBusy(true)
		defer controller.SetSliderBusy(false)
		return controller.SeekTo(ctx, position)
	})
}

func (m *Model) volumeBy(delta int) tea.Cmd {
	controller := m.deps.Controller
	return m.outcome(func(ctx context.Context) player.Outcome {
		return controller.VolumeBy(ctx, delta)
	})
}

// remoteAction runs fn against Connect; it does nothing in preview mode.
func (m *Model) remoteAction(fn func(context.Context, *player.RemoteBackend) error) tea.Cmd {
	if m.deps.Controller == nil || !m.deps.Controller.Premium() {
		return nil
	}
	remote := m.deps.Controller.Remote()
	ctx := m.ctx
	return func() tea.Msg {
		if err := fn(ctx, remote); err != nil {
			return outcomeMsg{Err: err, Toast: core.Toast{Variant: core.ToastError, Key: "error.generic"}}
		}
		return outcomeMsg{}
	}
}

func (m *Model) playRow() tea.Cmd {
	t := m.tracks
	row, ok := t.selected()
	if !ok || !row.Loaded() {
		return nil
	}
	page := t.page
	in := player.PlayButtonInput{
		Track:     &row,
		Position:  row.Position,
		AllTracks: t.list.Rows(),
		Page:      page,
		// Artist contexts take no offset, so their rows play as a uri list.
		IsSingle: page.Type == core.PageTypeArtist,
	}
	return m.outcome(func(ctx context.Context) player.Outcome {
		return m.deps.Controller.HandlePlayButton(ctx, in)
	})
}

func (m *Model) playPage() tea.Cmd {
	t := m.tracks
	in := player.PlayButtonInput{
		URI:       t.page.URI,
		AllTracks: t.list.Rows(),
		Page:      t.page,
	}
	return m.outcome(func(ctx context.Context) player.Outcome {
		return m.deps.Controller.HandlePlayButton(ctx, in)
	})
}

func (m *Model) toggleSave() tea.Cmd {
	t := m.tracks
	row, ok := t.selected()
	if !ok || row.ID == "" || row.IsLocal {
		return nil
	}
	action := core.MenuSaveToLibrary
	if t.list.InLibrary(row.Position) {
		action = core.MenuRemoveFromLibrary
	}
	return m.runMenuEntry(core.MenuEntry{Action: action}, core.MenuContext{Item: row}, "", row.Position)
}

func (m *Model) openPage(pageType, id, name string) tea.Cmd {
	client := m.deps.Client
	user := m.user()
	if client == nil || user == nil {
		return m.toast(core.Toast{Variant: core.ToastError, Key: "error.login_required"})
	}
	ctx := m.ctx
	opts := []tracklist.Option{
		tracklist.WithMetrics(m.deps.Metrics),
		tracklist.WithOverscan(m.deps.Config.OverscanRows),
	}
	if m.deps.Library != nil {
		opts = append(opts, tracklist.WithLibrary(m.deps.Library, client.CheckTracksInLibrary))
	}
	logger := m.logger

	m.opening = true
	return func() tea.Msg {
		page, err := pageDetails(ctx, client, user, pageType, id, name)
		if err != nil {
			return pageMsg{err: err}
		}
		loader, err := tracklist.LoaderFor(client, *page, user.Market())
		if err != nil {
			return pageMsg{err: err}
		}
		return pageMsg{page: page, list: tracklist.New(loader, page.Total, logger, opts...)}
	}
}

func pageDetails(ctx context.Context, client core.SpotifyClient, user *core.User, pageType, id, name string) (*core.PageDetails, error) {
	switch pageType {
	case core.PageTypePlaylist:
		return client.PlaylistDetails(ctx, id)
	case core.PageTypeAlbum:
		return client.AlbumDetails(ctx, id)
	case core.PageTypeShow:
		return client.ShowDetails(ctx, id)
	case core.PageTypeArtist:
		return &core.PageDetails{
			ID:   id,
			URI:  spotifyuri.Build(spotifyuri.TypeArtist, id),
			Type: core.PageTypeArtist,
			Name: name,
		}, nil
	case core.PageTypeCollection:
		return &core.PageDetails{
			ID:   user.ID,
			URI:  "spotify:user:" + user.ID + ":collection",
			Type: core.PageTypeCollection,
			Name: name,
		}, nil
	}
	return nil, errors.New("unknown page type " + pageType)
}

func (m *Model) ensureVisible() tea.Cmd {
	if m.view != TracksView || m.tracks == nil {
		return nil
	}
	first, last := m.tracks.window()
	lst := m.tracks.list
	ctx := m.ctx
	return func() tea.Msg {
		return rowsLoadedMsg{list: lst, err: lst.EnsureVisible(ctx, first, last)}
	}
}

func (m *Model) fetchLyrics() tea.Cmd {
	item := m.state.CurrentlyPlaying
	if item == nil || m.deps.Lyrics == nil {
		m.lyrics, m.lyricsErr, m.lyricsFor = nil, nil, ""
		return nil
	}
	m.lyrics, m.lyricsErr, m.lyricsFor = nil, nil, ""
	current := *item
	source := m.deps.Lyrics
	ctx := m.ctx
	return func() tea.Msg {
		l, err := source.ForItem(ctx, current)
		return lyricsMsg{itemID: current.ID, lyrics: l, err: err}
	}
}

func (m *Model) selectDevice(device core.Device) tea.Cmd {
	client := m.deps.Client
	if client == nil {
		return nil
	}
	var remote *player.RemoteBackend
	if m.deps.Controller != nil {
		remote = m.deps.Controller.Remote()
	}
	playing := m.state.IsPlaying
	ctx := m.ctx
	return func() tea.Msg {
		if err := client.TransferPlayback(ctx, device.ID, playing); err != nil {
			return deviceSelectedMsg{device: device, err: err}
		}
		if remote != nil {
			remote.SetDevice(device.ID)
			remote.Wake()
		}
		return deviceSelectedMsg{device: device}
	}
}
