package permissions

// Name is a logical, platform-agnostic permission name.
type Name string

// The closed vocabulary of logical permission names.
const (
	AccessCoarseLocation Name = "ACCESS_COARSE_LOCATION"
	AccessFineLocation   Name = "ACCESS_FINE_LOCATION"
	AlwaysLocation       Name = "ALWAYS_LOCATION"
	WhenInUseLocation    Name = "WHEN_IN_USE_LOCATION"
	Camera               Name = "CAMERA"
	PhotoLibrary         Name = "PHOTO_LIBRARY"
	ReadContacts         Name = "READ_CONTACTS"
	WriteContacts        Name = "WRITE_CONTACTS"
	RecordAudio          Name = "RECORD_AUDIO"

	// Names that carry no meaning on every platform.
	ReadExternalStorage  Name = "READ_EXTERNAL_STORAGE"
	WriteExternalStorage Name = "WRITE_EXTERNAL_STORAGE"
	CallPhone            Name = "CALL_PHONE"
	ReadPhoneState       Name = "READ_PHONE_STATE"
	ReadSMS              Name = "READ_SMS"
	Vibrate              Name = "VIBRATE"
)
