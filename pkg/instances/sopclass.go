package instances

// Image storage SOP classes.
const (
	ComputedRadiographyImageStorage                   = "1.2.840.10008.5.1.4.1.1.1"
	DigitalXRayImageStorageForPresentation            = "1.2.840.10008.5.1.4.1.1.1.1"
	DigitalXRayImageStorageForProcessing              = "1.2.840.10008.5.1.4.1.1.1.1.1"
	DigitalMammographyXRayImageStorageForPresentation = "1.2.840.10008.5.1.4.1.1.1.2"
	DigitalMammographyXRayImageStorageForProcessing   = "1.2.840.10008.5.1.4.1.1.1.2.1"
	DigitalIntraOralXRayImageStorageForPresentation   = "1.2.840.10008.5.1.4.1.1.1.3"
	DigitalIntraOralXRayImageStorageForProcessing     = "1.2.840.10008.5.1.4.1.1.1.3.1"

	CTImageStorage                        = "1.2.840.10008.5.1.4.1.1.2"
	EnhancedCTImageStorage                = "1.2.840.10008.5.1.4.1.1.2.1"
	LegacyConvertedEnhancedCTImageStorage = "1.2.840.10008.5.1.4.1.1.2.2"

	UltrasoundMultiFrameImageStorage = "1.2.840.10008.5.1.4.1.1.3.1"
	UltrasoundImageStorage           = "1.2.840.10008.5.1.4.1.1.6.1"
	EnhancedUSVolumeStorage          = "1.2.840.10008.5.1.4.1.1.6.2"

	MRImageStorage                        = "1.2.840.10008.5.1.4.1.1.4"
	EnhancedMRImageStorage                = "1.2.840.10008.5.1.4.1.1.4.1"
	EnhancedMRColorImageStorage           = "1.2.840.10008.5.1.4.1.1.4.3"
	LegacyConvertedEnhancedMRImageStorage = "1.2.840.10008.5.1.4.1.1.4.4"

	SecondaryCaptureImageStorage                        = "1.2.840.10008.5.1.4.1.1.7"
	MultiFrameSingleBitSecondaryCaptureImageStorage     = "1.2.840.10008.5.1.4.1.1.7.1"
	MultiFrameGrayscaleByteSecondaryCaptureImageStorage = "1.2.840.10008.5.1.4.1.1.7.2"
	MultiFrameGrayscaleWordSecondaryCaptureImageStorage = "1.2.840.10008.5.1.4.1.1.7.3"
	MultiFrameTrueColorSecondaryCaptureImageStorage     = "1.2.840.10008.5.1.4.1.1.7.4"

	XRayAngiographicImageStorage      = "1.2.840.10008.5.1.4.1.1.12.1"
	EnhancedXAImageStorage            = "1.2.840.10008.5.1.4.1.1.12.1.1"
	XRayRadiofluoroscopicImageStorage = "1.2.840.10008.5.1.4.1.1.12.2"
	EnhancedXRFImageStorage           = "1.2.840.10008.5.1.4.1.1.12.2.1"

	XRay3DAngiographicImageStorage                  = "1.2.840.10008.5.1.4.1.1.13.1.1"
	XRay3DCraniofacialImageStorage                  = "1.2.840.10008.5.1.4.1.1.13.1.2"
	BreastTomosynthesisImageStorage                 = "1.2.840.10008.5.1.4.1.1.13.1.3"
	BreastProjectionXRayImageStorageForPresentation = "1.2.840.10008.5.1.4.1.1.13.1.4"
	BreastProjectionXRayImageStorageForProcessing   = "1.2.840.10008.5.1.4.1.1.13.1.5"

	NuclearMedicineImageStorage            = "1.2.840.10008.5.1.4.1.1.20"
	PETImageStorage                        = "1.2.840.10008.5.1.4.1.1.128"
	LegacyConvertedEnhancedPETImageStorage = "1.2.840.10008.5.1.4.1.1.128.1"
	EnhancedPETImageStorage                = "1.2.840.10008.5.1.4.1.1.130"
	RTImageStorage                         = "1.2.840.10008.5.1.4.1.1.481.1"

	VLEndoscopicImageStorage                  = "1.2.840.10008.5.1.4.1.1.77.1.1"
	VLMicroscopicImageStorage                 = "1.2.840.10008.5.1.4.1.1.77.1.2"
	VLSlideCoordinatesMicroscopicImageStorage = "1.2.840.10008.5.1.4.1.1.77.1.3"
	VLPhotographicImageStorage                = "1.2.840.10008.5.1.4.1.1.77.1.4"
	OphthalmicPhotography8BitImageStorage     = "1.2.840.10008.5.1.4.1.1.77.1.5.1"
	OphthalmicPhotography16BitImageStorage    = "1.2.840.10008.5.1.4.1.1.77.1.5.2"
	OphthalmicTomographyImageStorage          = "1.2.840.10008.5.1.4.1.1.77.1.5.4"
	VLWholeSlideMicroscopyImageStorage        = "1.2.840.10008.5.1.4.1.1.77.1.6"
)

// Derived and non-image SOP classes.
const (
	SegmentationStorage        = "1.2.840.10008.5.1.4.1.1.66.4"
	SurfaceSegmentationStorage = "1.2.840.10008.5.1.4.1.1.66.5"

	BasicTextSR        = "1.2.840.10008.5.1.4.1.1.88.11"
	EnhancedSR         = "1.2.840.10008.5.1.4.1.1.88.22"
	ComprehensiveSR    = "1.2.840.10008.5.1.4.1.1.88.33"
	Comprehensive3DSR  = "1.2.840.10008.5.1.4.1.1.88.34"
	KeyObjectSelection = "1.2.840.10008.5.1.4.1.1.88.59"

	RTDoseStorage         = "1.2.840.10008.5.1.4.1.1.481.2"
	RTStructureSetStorage = "1.2.840.10008.5.1.4.1.1.481.3"
	RTPlanStorage         = "1.2.840.10008.5.1.4.1.1.481.5"

	GrayscaleSoftcopyPresentationStateStorage = "1.2.840.10008.5.1.4.1.1.11.1"
	EncapsulatedPDFStorage                    = "1.2.840.10008.5.1.4.1.1.104.1"
)

// imageSOPClasses lists the classes whose instances carry pixel data that can
// be stacked, in dictionary order.
var imageSOPClasses = []string{
	ComputedRadiographyImageStorage,
	DigitalXRayImageStorageForPresentation,
	DigitalXRayImageStorageForProcessing,
	DigitalMammographyXRayImageStorageForPresentation,
	DigitalMammographyXRayImageStorageForProcessing,
	DigitalIntraOralXRayImageStorageForPresentation,
	DigitalIntraOralXRayImageStorageForProcessing,
	CTImageStorage,
	EnhancedCTImageStorage,
	LegacyConvertedEnhancedCTImageStorage,
	UltrasoundMultiFrameImageStorage,
	UltrasoundImageStorage,
	EnhancedUSVolumeStorage,
	MRImageStorage,
	EnhancedMRImageStorage,
	EnhancedMRColorImageStorage,
	LegacyConvertedEnhancedMRImageStorage,
	SecondaryCaptureImageStorage,
	MultiFrameSingleBitSecondaryCaptureImageStorage,
	MultiFrameGrayscaleByteSecondaryCaptureImageStorage,
	MultiFrameGrayscaleWordSecondaryCaptureImageStorage,
	MultiFrameTrueColorSecondaryCaptureImageStorage,
	XRayAngiographicImageStorage,
	EnhancedXAImageStorage,
	XRayRadiofluoroscopicImageStorage,
	EnhancedXRFImageStorage,
	XRay3DAngiographicImageStorage,
	XRay3DCraniofacialImageStorage,
	BreastTomosynthesisImageStorage,
	BreastProjectionXRayImageStorageForPresentation,
	BreastProjectionXRayImageStorageForProcessing,
	NuclearMedicineImageStorage,
	PETImageStorage,
	LegacyConvertedEnhancedPETImageStorage,
	EnhancedPETImageStorage,
	RTImageStorage,
	VLEndoscopicImageStorage,
	VLMicroscopicImageStorage,
	VLSlideCoordinatesMicroscopicImageStorage,
	VLPhotographicImageStorage,
	OphthalmicPhotography8BitImageStorage,
	OphthalmicPhotography16BitImageStorage,
	OphthalmicTomographyImageStorage,
	VLWholeSlideMicroscopyImageStorage,
}

var imageSOPClassSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(imageSOPClasses))
	for _, uid := range imageSOPClasses {
		m[uid] = struct{}{}
	}
	return m
}()

// ImageSOPClasses returns the image storage SOP classes.
func ImageSOPClasses() []string {
	return append([]string(nil), imageSOPClasses...)
}

// IsImage reports whether the SOP class is an image storage class.
func IsImage(sopClassUID string) bool {
	_, ok := imageSOPClassSet[sopClassUID]
	return ok
}
