// Package itemkey defines the closed, format-neutral vocabulary (C6) that
// every tag dialect's Split/Merge implementation maps into and out of.
package itemkey

// ItemKey is a semantic metadata field shared across all dialects. The
// zero value is TrackTitle (the first key of the vocabulary); use
// NewUnknown to wrap a dialect-specific name that has no generic mapping.
type ItemKey struct {
	id      int
	unknown string
}

func (k ItemKey) String() string {
	if k.id == unknownID {
		return "Unknown(" + k.unknown + ")"
	}
	if n, ok := names[k.id]; ok {
		return n
	}
	return "Invalid"
}

// IsUnknown reports whether k is the Unknown escape hatch, and if so
// returns the dialect-specific name it wraps.
func (k ItemKey) IsUnknown() (string, bool) {
	return k.unknown, k.id == unknownID
}

// NewUnknown wraps a dialect-specific key name with no generic mapping.
func NewUnknown(name string) ItemKey { return ItemKey{id: unknownID, unknown: name} }

const unknownID = -1

// The generic key vocabulary. Declared as typed constants over an int id
// so ItemKey remains comparable and usable as a map key.
const (
	idTrackTitle = iota
	idTrackSubtitle
	idTrackArtist
	idTrackArtists
	idAlbumTitle
	idAlbumArtist
	idAlbumSubtitle
	idComposer
	idConductor
	idRemixer
	idArranger
	idEngineer
	idProducer
	idDJMixer
	idMixer
	idLyricist
	idWriter
	idGenre
	idMood
	idComment
	idDescription
	idLyrics
	idScript
	idLanguage
	idLabel
	idCatalogNumber
	idBarcode
	idISRC
	idRecordingDate
	idOriginalReleaseDate
	idReleaseDate
	idOriginalFileName
	idOriginalArtist
	idOriginalAlbum
	idOriginalLyricist
	idCopyright
	idLicense
	idEncoder
	idEncoderSettings
	idEncodedBy
	idTrackNumber
	idTrackTotal
	idDiscNumber
	idDiscTotal
	idDiscSubtitle
	idMovementName
	idMovementNumber
	idMovementTotal
	idWork
	idPart
	idBPM
	idInitialKey
	idCompilation
	idPodcast
	idPodcastURL
	idPodcastDescription
	idPodcastCategory
	idGroupID
	idContentGroup
	idAdvisoryRating
	idShowName
	idShowNameSorted
	idEpisodeGlobalUniqueID
	idGapless
	idReplayGainAlbumGain
	idReplayGainAlbumPeak
	idReplayGainTrackGain
	idReplayGainTrackPeak
	idAppleSoundCheck
	idMusicBrainzRecordingId
	idMusicBrainzTrackId
	idMusicBrainzReleaseId
	idMusicBrainzReleaseGroupId
	idMusicBrainzArtistId
	idMusicBrainzAlbumArtistId
	idMusicBrainzWorkId
	idMusicBrainzTRMId
	idMusicBrainzDiscId
	idMusicBrainzReleaseTrackId
	idMusicIPPUID
	idAcoustidId
	idAcoustidFingerprint
	idUFID
	idCoverArtURL
	idKeywords
	idFileOwner
	idFileType
	idTaggingTime
	idEncodingTime
	idPurchaseDate
	idSetSubtitle
	idPreferredArtistRole
	idPerformer
	idPublisher
	idFlagCompilation
	idFlagPodcast
	idFlagGapless
	idAppleXID
	idComposerSort
	idArtistSort
	idAlbumArtistSort
	idTitleSort
	idAlbumSort
	numKeys
)

var names = map[int]string{
	idTrackTitle:                 "TrackTitle",
	idTrackSubtitle:              "TrackSubtitle",
	idTrackArtist:                "TrackArtist",
	idTrackArtists:               "TrackArtists",
	idAlbumTitle:                 "AlbumTitle",
	idAlbumArtist:                "AlbumArtist",
	idAlbumSubtitle:              "AlbumSubtitle",
	idComposer:                   "Composer",
	idConductor:                  "Conductor",
	idRemixer:                    "Remixer",
	idArranger:                   "Arranger",
	idEngineer:                   "Engineer",
	idProducer:                   "Producer",
	idDJMixer:                    "DJMixer",
	idMixer:                      "Mixer",
	idLyricist:                   "Lyricist",
	idWriter:                     "Writer",
	idGenre:                      "Genre",
	idMood:                       "Mood",
	idComment:                    "Comment",
	idDescription:                "Description",
	idLyrics:                     "Lyrics",
	idScript:                     "Script",
	idLanguage:                   "Language",
	idLabel:                      "Label",
	idCatalogNumber:              "CatalogNumber",
	idBarcode:                    "Barcode",
	idISRC:                       "ISRC",
	idRecordingDate:              "RecordingDate",
	idOriginalReleaseDate:        "OriginalReleaseDate",
	idReleaseDate:                "ReleaseDate",
	idOriginalFileName:           "OriginalFileName",
	idOriginalArtist:             "OriginalArtist",
	idOriginalAlbum:              "OriginalAlbum",
	idOriginalLyricist:           "OriginalLyricist",
	idCopyright:                  "Copyright",
	idLicense:                    "License",
	idEncoder:                    "Encoder",
	idEncoderSettings:            "EncoderSettings",
	idEncodedBy:                  "EncodedBy",
	idTrackNumber:                "TrackNumber",
	idTrackTotal:                 "TrackTotal",
	idDiscNumber:                 "DiscNumber",
	idDiscTotal:                  "DiscTotal",
	idDiscSubtitle:               "DiscSubtitle",
	idMovementName:               "MovementName",
	idMovementNumber:             "MovementNumber",
	idMovementTotal:              "MovementTotal",
	idWork:                       "Work",
	idPart:                       "Part",
	idBPM:                        "BPM",
	idInitialKey:                 "InitialKey",
	idCompilation:                "Compilation",
	idPodcast:                    "Podcast",
	idPodcastURL:                 "PodcastURL",
	idPodcastDescription:         "PodcastDescription",
	idPodcastCategory:            "PodcastCategory",
	idGroupID:                    "GroupID",
	idContentGroup:               "ContentGroup",
	idAdvisoryRating:             "AdvisoryRating",
	idShowName:                   "ShowName",
	idShowNameSorted:             "ShowNameSorted",
	idEpisodeGlobalUniqueID:      "EpisodeGlobalUniqueID",
	idGapless:                    "Gapless",
	idReplayGainAlbumGain:        "ReplayGainAlbumGain",
	idReplayGainAlbumPeak:        "ReplayGainAlbumPeak",
	idReplayGainTrackGain:        "ReplayGainTrackGain",
	idReplayGainTrackPeak:        "ReplayGainTrackPeak",
	idAppleSoundCheck:            "AppleSoundCheck",
	idMusicBrainzRecordingId:     "MusicBrainzRecordingId",
	idMusicBrainzTrackId:         "MusicBrainzTrackId",
	idMusicBrainzReleaseId:       "MusicBrainzReleaseId",
	idMusicBrainzReleaseGroupId:  "MusicBrainzReleaseGroupId",
	idMusicBrainzArtistId:        "MusicBrainzArtistId",
	idMusicBrainzAlbumArtistId:   "MusicBrainzAlbumArtistId",
	idMusicBrainzWorkId:          "MusicBrainzWorkId",
	idMusicBrainzTRMId:           "MusicBrainzTRMId",
	idMusicBrainzDiscId:          "MusicBrainzDiscId",
	idMusicBrainzReleaseTrackId:  "MusicBrainzReleaseTrackId",
	idMusicIPPUID:                "MusicIPPUID",
	idAcoustidId:                 "AcoustidId",
	idAcoustidFingerprint:        "AcoustidFingerprint",
	idUFID:                       "UFID",
	idCoverArtURL:                "CoverArtURL",
	idKeywords:                   "Keywords",
	idFileOwner:                  "FileOwner",
	idFileType:                   "FileType",
	idTaggingTime:                "TaggingTime",
	idEncodingTime:               "EncodingTime",
	idPurchaseDate:               "PurchaseDate",
	idSetSubtitle:                "SetSubtitle",
	idPreferredArtistRole:        "PreferredArtistRole",
	idPerformer:                  "Performer",
	idPublisher:                  "Publisher",
	idFlagCompilation:            "FlagCompilation",
	idFlagPodcast:                "FlagPodcast",
	idFlagGapless:                "FlagGapless",
	idAppleXID:                   "AppleXID",
	idComposerSort:               "ComposerSort",
	idArtistSort:                 "ArtistSort",
	idAlbumArtistSort:            "AlbumArtistSort",
	idTitleSort:                  "TitleSort",
	idAlbumSort:                  "AlbumSort",
}

func key(id int) ItemKey { return ItemKey{id: id} }

var (
	TrackTitle                = key(idTrackTitle)
	TrackSubtitle             = key(idTrackSubtitle)
	TrackArtist               = key(idTrackArtist)
	TrackArtists              = key(idTrackArtists)
	AlbumTitle                = key(idAlbumTitle)
	AlbumArtist               = key(idAlbumArtist)
	AlbumSubtitle             = key(idAlbumSubtitle)
	Composer                  = key(idComposer)
	Conductor                 = key(idConductor)
	Remixer                   = key(idRemixer)
	Arranger                  = key(idArranger)
	Engineer                  = key(idEngineer)
	Producer                  = key(idProducer)
	DJMixer                   = key(idDJMixer)
	Mixer                     = key(idMixer)
	Lyricist                  = key(idLyricist)
	Writer                    = key(idWriter)
	Genre                     = key(idGenre)
	Mood                      = key(idMood)
	Comment                   = key(idComment)
	Description               = key(idDescription)
	Lyrics                    = key(idLyrics)
	Script                    = key(idScript)
	Language                  = key(idLanguage)
	Label                     = key(idLabel)
	CatalogNumber             = key(idCatalogNumber)
	Barcode                   = key(idBarcode)
	ISRC                      = key(idISRC)
	RecordingDate             = key(idRecordingDate)
	OriginalReleaseDate       = key(idOriginalReleaseDate)
	ReleaseDate               = key(idReleaseDate)
	OriginalFileName          = key(idOriginalFileName)
	OriginalArtist            = key(idOriginalArtist)
	OriginalAlbum             = key(idOriginalAlbum)
	OriginalLyricist          = key(idOriginalLyricist)
	Copyright                 = key(idCopyright)
	License                   = key(idLicense)
	Encoder                   = key(idEncoder)
	EncoderSettings           = key(idEncoderSettings)
	EncodedBy                 = key(idEncodedBy)
	TrackNumber               = key(idTrackNumber)
	TrackTotal                = key(idTrackTotal)
	DiscNumber                = key(idDiscNumber)
	DiscTotal                 = key(idDiscTotal)
	DiscSubtitle              = key(idDiscSubtitle)
	MovementName              = key(idMovementName)
	MovementNumber            = key(idMovementNumber)
	MovementTotal             = key(idMovementTotal)
	Work                      = key(idWork)
	Part                      = key(idPart)
	BPM                       = key(idBPM)
	InitialKey                = key(idInitialKey)
	Compilation               = key(idCompilation)
	Podcast                   = key(idPodcast)
	PodcastURL                = key(idPodcastURL)
	PodcastDescription        = key(idPodcastDescription)
	PodcastCategory           = key(idPodcastCategory)
	GroupID                   = key(idGroupID)
	ContentGroup              = key(idContentGroup)
	AdvisoryRating            = key(idAdvisoryRating)
	ShowName                  = key(idShowName)
	ShowNameSorted            = key(idShowNameSorted)
	EpisodeGlobalUniqueID     = key(idEpisodeGlobalUniqueID)
	Gapless                   = key(idGapless)
	ReplayGainAlbumGain       = key(idReplayGainAlbumGain)
	ReplayGainAlbumPeak       = key(idReplayGainAlbumPeak)
	ReplayGainTrackGain       = key(idReplayGainTrackGain)
	ReplayGainTrackPeak       = key(idReplayGainTrackPeak)
	AppleSoundCheck           = key(idAppleSoundCheck)
	MusicBrainzRecordingId    = key(idMusicBrainzRecordingId)
	MusicBrainzTrackId        = key(idMusicBrainzTrackId)
	MusicBrainzReleaseId      = key(idMusicBrainzReleaseId)
	MusicBrainzReleaseGroupId = key(idMusicBrainzReleaseGroupId)
	MusicBrainzArtistId       = key(idMusicBrainzArtistId)
	MusicBrainzAlbumArtistId  = key(idMusicBrainzAlbumArtistId)
	MusicBrainzWorkId         = key(idMusicBrainzWorkId)
	MusicBrainzTRMId          = key(idMusicBrainzTRMId)
	MusicBrainzDiscId         = key(idMusicBrainzDiscId)
	MusicBrainzReleaseTrackId = key(idMusicBrainzReleaseTrackId)
	MusicIPPUID               = key(idMusicIPPUID)
	AcoustidId                = key(idAcoustidId)
	AcoustidFingerprint       = key(idAcoustidFingerprint)
	UFID                      = key(idUFID)
	CoverArtURL               = key(idCoverArtURL)
	Keywords                  = key(idKeywords)
	FileOwner                 = key(idFileOwner)
	FileType                  = key(idFileType)
	TaggingTime               = key(idTaggingTime)
	EncodingTime              = key(idEncodingTime)
	PurchaseDate              = key(idPurchaseDate)
	SetSubtitle               = key(idSetSubtitle)
	PreferredArtistRole       = key(idPreferredArtistRole)
	Performer                 = key(idPerformer)
	Publisher                 = key(idPublisher)
	FlagCompilation           = key(idFlagCompilation)
	FlagPodcast               = key(idFlagPodcast)
	FlagGapless               = key(idFlagGapless)
	AppleXID                  = key(idAppleXID)
	ComposerSort              = key(idComposerSort)
	ArtistSort                = key(idArtistSort)
	AlbumArtistSort           = key(idAlbumArtistSort)
	TitleSort                 = key(idTitleSort)
	AlbumSort                 = key(idAlbumSort)
)

// Count returns the number of well-known keys (excluding Unknown), for
// tests that want to assert coverage of the ≈100-key vocabulary named in
// §3.
func Count() int { return numKeys }
